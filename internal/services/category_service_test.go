package services

import (
	"testing"

	"expenso/internal/authz"
	"expenso/internal/models"
	"expenso/internal/testutil"
)

func TestCreateSubcategory(t *testing.T) {
	t.Run("owner_creates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)

		cat, err := svc.CreateSubcategory(authz.Member(owner.ID), root.ID, "Travel", 50000)
		testutil.AssertNoError(t, err)

		if cat.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if cat.ParentID == nil || *cat.ParentID != root.ID {
			t.Errorf("expected parent %d, got %v", root.ID, cat.ParentID)
		}
		if cat.ReportID != root.ReportID {
			t.Errorf("expected report %d, got %d", root.ReportID, cat.ReportID)
		}
		if cat.Budget != 50000 {
			t.Errorf("expected budget 50000, got %d", cat.Budget)
		}
	})

	t.Run("granted_admin_creates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		testutil.CreateTestPermission(t, db, admin.ID, mid.ID, models.RoleAdmin)

		_, err := svc.CreateSubcategory(authz.Member(admin.ID), mid.ID, "Meals", 0)
		testutil.AssertNoError(t, err)
	})

	t.Run("reviewer_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		testutil.CreateTestPermission(t, db, reviewer.ID, root.ID, models.RoleReviewer)

		_, err := svc.CreateSubcategory(authz.Member(reviewer.ID), root.ID, "Meals", 0)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing_parent_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)

		// The parent is named by the caller, so its absence is 404 — unlike
		// a mutation on the category itself, which hides behind 403.
		_, err := svc.CreateSubcategory(authz.Member(user.ID), 99999, "Meals", 0)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)

		_, err := svc.CreateSubcategory(authz.Member(owner.ID), root.ID, "", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)

		_, err := svc.CreateSubcategory(authz.Member(owner.ID), root.ID, "Meals", -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetCategory(t *testing.T) {
	t.Run("granted_member_views", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		child := testutil.CreateTestCategory(t, db, mid)
		testutil.CreateTestPermission(t, db, member.ID, mid.ID, models.RoleSubmitter)

		cat, err := svc.GetCategory(authz.Member(member.ID), mid.ID)
		testutil.AssertNoError(t, err)

		if len(cat.Children) != 1 || cat.Children[0].ID != child.ID {
			t.Errorf("expected child %d preloaded, got %v", child.ID, cat.Children)
		}
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)

		_, err := svc.GetCategory(authz.Member(stranger.ID), root.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing_category_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetCategory(authz.Member(user.ID), 99999)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestUpdateCategory(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	intPtr := func(n int64) *int64 { return &n }

	t.Run("admin_updates_at_boundary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)

		cat, err := svc.UpdateCategory(authz.Member(owner.ID), root.ID, strPtr("Q3 Expenses"), intPtr(100000))
		testutil.AssertNoError(t, err)

		if cat.Name != "Q3 Expenses" || cat.Budget != 100000 {
			t.Errorf("expected updated name/budget, got %s/%d", cat.Name, cat.Budget)
		}
	})

	t.Run("reviewer_updates_below_boundary_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		leaf := testutil.CreateTestCategory(t, db, mid)
		testutil.CreateTestPermission(t, db, reviewer.ID, mid.ID, models.RoleReviewer)

		_, err := svc.UpdateCategory(authz.Member(reviewer.ID), leaf.ID, strPtr("Renamed"), nil)
		testutil.AssertNoError(t, err)

		// At the boundary itself the same reviewer is refused.
		_, err = svc.UpdateCategory(authz.Member(reviewer.ID), mid.ID, strPtr("Renamed"), nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("partial_update_keeps_other_field", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)

		_, err := svc.UpdateCategory(authz.Member(owner.ID), mid.ID, nil, intPtr(7500))
		testutil.AssertNoError(t, err)

		var reloaded models.Category
		testutil.AssertNoError(t, db.First(&reloaded, mid.ID).Error)
		if reloaded.Name != mid.Name {
			t.Errorf("expected name unchanged %q, got %q", mid.Name, reloaded.Name)
		}
		if reloaded.Budget != 7500 {
			t.Errorf("expected budget 7500, got %d", reloaded.Budget)
		}
	})

	t.Run("missing_category_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateCategory(authz.Member(user.ID), 99999, strPtr("X"), nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("owner_deletes_root_deleting_report", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		report, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		testutil.CreateTestExpense(t, db, mid, owner.ID)

		result, err := svc.DeleteCategory(authz.Member(owner.ID), root.ID)
		testutil.AssertNoError(t, err)

		if !result.ReportDeleted || result.ReportID != report.ID {
			t.Errorf("expected report %d deleted, got %+v", report.ID, result)
		}
		var count int64
		db.Model(&models.Report{}).Where("id = ?", report.ID).Count(&count)
		if count != 0 {
			t.Error("expected report row gone")
		}
	})

	t.Run("granted_admin_cannot_delete_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		testutil.CreateTestPermission(t, db, admin.ID, root.ID, models.RoleAdmin)

		_, err := svc.DeleteCategory(authz.Member(admin.ID), root.ID)
		testutil.AssertAppError(t, err, "ROOT_DELETION_NOT_OWNER")
	})

	t.Run("admin_deletes_subtree_completely", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		report, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		leaf := testutil.CreateTestCategory(t, db, mid)
		sibling := testutil.CreateTestCategory(t, db, root)

		expense := testutil.CreateTestExpense(t, db, leaf, owner.ID)
		db.Create(&models.Approval{ExpenseID: expense.ID, UserID: &owner.ID, StatusChange: models.StatusDenied})
		testutil.CreateTestPermission(t, db, member.ID, leaf.ID, models.RoleSubmitter)
		testutil.CreateTestGuestToken(t, db, mid.ID, owner.ID, models.LevelSubmitOnly)
		keptExpense := testutil.CreateTestExpense(t, db, sibling, owner.ID)

		result, err := svc.DeleteCategory(authz.Member(owner.ID), mid.ID)
		testutil.AssertNoError(t, err)
		if result.ReportDeleted {
			t.Error("expected subtree deletion, not report deletion")
		}

		var count int64
		db.Model(&models.Category{}).Where("id IN ?", []uint{mid.ID, leaf.ID}).Count(&count)
		if count != 0 {
			t.Error("expected subtree categories gone")
		}
		db.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
		if count != 0 {
			t.Error("expected subtree expense gone")
		}
		db.Model(&models.Approval{}).Where("expense_id = ?", expense.ID).Count(&count)
		if count != 0 {
			t.Error("expected subtree approvals gone")
		}
		db.Model(&models.CategoryPermission{}).Where("category_id = ?", leaf.ID).Count(&count)
		if count != 0 {
			t.Error("expected subtree grants gone")
		}
		db.Model(&models.GuestToken{}).Where("category_id = ?", mid.ID).Count(&count)
		if count != 0 {
			t.Error("expected subtree share links gone")
		}

		// The rest of the report is untouched.
		db.Model(&models.Report{}).Where("id = ?", report.ID).Count(&count)
		if count != 1 {
			t.Error("expected report to survive")
		}
		db.Model(&models.Expense{}).Where("id = ?", keptExpense.ID).Count(&count)
		if count != 1 {
			t.Error("expected sibling expense to survive")
		}
	})

	t.Run("reviewer_deletes_empty_leaf_below_boundary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		leaf := testutil.CreateTestCategory(t, db, mid)
		testutil.CreateTestPermission(t, db, reviewer.ID, mid.ID, models.RoleReviewer)

		_, err := svc.DeleteCategory(authz.Member(reviewer.ID), leaf.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("reviewer_cannot_delete_boundary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		testutil.CreateTestPermission(t, db, reviewer.ID, mid.ID, models.RoleReviewer)

		_, err := svc.DeleteCategory(authz.Member(reviewer.ID), mid.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("reviewer_blocked_by_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		leaf := testutil.CreateTestCategory(t, db, mid)
		testutil.CreateTestPermission(t, db, reviewer.ID, mid.ID, models.RoleReviewer)
		testutil.CreateTestExpense(t, db, leaf, owner.ID)

		_, err := svc.DeleteCategory(authz.Member(reviewer.ID), leaf.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_EXPENSES")
	})

	t.Run("reviewer_blocked_by_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		_, root := testutil.CreateTestReport(t, db, owner.ID)
		mid := testutil.CreateTestCategory(t, db, root)
		inner := testutil.CreateTestCategory(t, db, mid)
		testutil.CreateTestCategory(t, db, inner)
		testutil.CreateTestPermission(t, db, reviewer.ID, mid.ID, models.RoleReviewer)

		_, err := svc.DeleteCategory(authz.Member(reviewer.ID), inner.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("missing_category_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.DeleteCategory(authz.Member(user.ID), 99999)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}
