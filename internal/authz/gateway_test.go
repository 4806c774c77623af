package authz

import (
	"testing"

	"expenso/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name   string
		acc    *Access
		action Action
		want   bool
	}{
		{"nil_access_denies", nil, ActionViewCategory, false},

		{"submitter_views", &Access{Role: models.RoleSubmitter}, ActionViewCategory, true},
		{"submitter_submits", &Access{Role: models.RoleSubmitter}, ActionSubmitExpense, true},
		{"submitter_cannot_edit", &Access{Role: models.RoleSubmitter}, ActionEditCategory, false},
		{"submitter_cannot_act_on_expense", &Access{Role: models.RoleSubmitter}, ActionActOnExpense, false},

		{"reviewer_edits_below_boundary", &Access{Role: models.RoleReviewer, IsDirect: false}, ActionEditCategory, true},
		{"reviewer_cannot_edit_at_boundary", &Access{Role: models.RoleReviewer, IsDirect: true}, ActionEditCategory, false},
		{"reviewer_deletes_below_boundary", &Access{Role: models.RoleReviewer, IsDirect: false}, ActionDeleteCategory, true},
		{"reviewer_cannot_delete_at_boundary", &Access{Role: models.RoleReviewer, IsDirect: true}, ActionDeleteCategory, false},
		{"reviewer_acts_on_expense_at_boundary", &Access{Role: models.RoleReviewer, IsDirect: true}, ActionActOnExpense, true},
		{"reviewer_cannot_create_subcategory", &Access{Role: models.RoleReviewer}, ActionCreateSubcategory, false},
		{"reviewer_cannot_manage_permissions", &Access{Role: models.RoleReviewer}, ActionManagePermissions, false},

		{"admin_edits_at_boundary", &Access{Role: models.RoleAdmin, IsDirect: true}, ActionEditCategory, true},
		{"admin_deletes_at_boundary", &Access{Role: models.RoleAdmin, IsDirect: true}, ActionDeleteCategory, true},
		{"admin_creates_subcategory", &Access{Role: models.RoleAdmin, IsDirect: true}, ActionCreateSubcategory, true},
		{"admin_manages_permissions", &Access{Role: models.RoleAdmin}, ActionManagePermissions, true},

		{"guest_submit_only_submits", &Access{Role: models.RoleSubmitter, IsGuest: true, Level: models.LevelSubmitOnly}, ActionSubmitExpense, true},
		{"guest_submit_only_cannot_act", &Access{Role: models.RoleSubmitter, IsGuest: true, Level: models.LevelSubmitOnly}, ActionActOnExpense, false},
		{"guest_review_only_acts", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly}, ActionActOnExpense, true},
		{"guest_review_only_cannot_submit", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly}, ActionSubmitExpense, false},
		{"guest_views", &Access{Role: models.RoleSubmitter, IsGuest: true, Level: models.LevelSubmitOnly}, ActionViewCategory, true},
		{"guest_cannot_edit", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly, IsDirect: false}, ActionEditCategory, false},
		{"guest_cannot_delete", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly, IsDirect: false}, ActionDeleteCategory, false},
		{"guest_cannot_create_subcategory", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly}, ActionCreateSubcategory, false},
		{"guest_cannot_manage_permissions", &Access{Role: models.RoleReviewer, IsGuest: true, Level: models.LevelReviewOnly}, ActionManagePermissions, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.acc, tt.action); got != tt.want {
				t.Errorf("Allowed(%+v, %d) = %v, want %v", tt.acc, tt.action, got, tt.want)
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, min models.Role
		want      bool
	}{
		{models.RoleAdmin, models.RoleSubmitter, true},
		{models.RoleAdmin, models.RoleAdmin, true},
		{models.RoleReviewer, models.RoleAdmin, false},
		{models.RoleReviewer, models.RoleReviewer, true},
		{models.RoleSubmitter, models.RoleReviewer, false},
		{models.RoleSubmitter, models.RoleSubmitter, true},
	}
	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.min); got != tt.want {
			t.Errorf("RoleAtLeast(%s, %s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleReviewer, models.RoleSubmitter} {
		if !ValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if ValidRole("OWNER") {
		t.Error("expected OWNER to be invalid")
	}
	if ValidRole("admin") {
		t.Error("expected lowercase role to be invalid")
	}
}
