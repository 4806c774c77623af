package authz

import "expenso/internal/models"

// Action is an intent checked against resolved access.
type Action int

const (
	// ActionViewCategory covers reading a category and its expenses.
	ActionViewCategory Action = iota
	// ActionSubmitExpense creates an expense in a category.
	ActionSubmitExpense
	// ActionEditCategory changes a category's name or budget.
	ActionEditCategory
	// ActionDeleteCategory removes a category subtree. Root deletion carries
	// an additional owner check in the service layer.
	ActionDeleteCategory
	// ActionCreateSubcategory adds a child category.
	ActionCreateSubcategory
	// ActionManagePermissions grants/revokes roles and manages share links.
	ActionManagePermissions
	// ActionActOnExpense approves or denies an expense; the state machine
	// decides which transitions the actor may take.
	ActionActOnExpense
)

// actionRule is one row of the gateway's decision table.
type actionRule struct {
	minRole models.Role
	// structural actions are allowed to a REVIEWER only strictly below the
	// boundary; an ADMIN may perform them at the boundary too.
	structural bool
	// membersOnly actions are never available to share-link holders.
	membersOnly bool
	// guestLevel, when set, is the share-link level a guest must hold.
	guestLevel models.PermissionLevel
}

// actionRules is the authorization table. Kept as data so the rules are
// auditable and testable without HTTP plumbing.
var actionRules = map[Action]actionRule{
	ActionViewCategory:      {minRole: models.RoleSubmitter},
	ActionSubmitExpense:     {minRole: models.RoleSubmitter, guestLevel: models.LevelSubmitOnly},
	ActionEditCategory:      {minRole: models.RoleReviewer, structural: true, membersOnly: true},
	ActionDeleteCategory:    {minRole: models.RoleReviewer, structural: true, membersOnly: true},
	ActionCreateSubcategory: {minRole: models.RoleAdmin, membersOnly: true},
	ActionManagePermissions: {minRole: models.RoleAdmin, membersOnly: true},
	ActionActOnExpense:      {minRole: models.RoleReviewer, guestLevel: models.LevelReviewOnly},
}

// Allowed maps (resolved access, action) to allow/deny. A nil access —
// whether from a missing category or an absent grant — always denies.
func Allowed(acc *Access, action Action) bool {
	if acc == nil {
		return false
	}
	rule, ok := actionRules[action]
	if !ok {
		return false
	}
	if acc.IsGuest {
		if rule.membersOnly {
			return false
		}
		if rule.guestLevel != "" && acc.Level != rule.guestLevel {
			return false
		}
	}
	if !RoleAtLeast(acc.Role, rule.minRole) {
		return false
	}
	if rule.structural && acc.Role != models.RoleAdmin && acc.IsDirect {
		return false
	}
	return true
}
