package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "expenso/internal/errors"
	"expenso/internal/models"
)

// Cascade planning: computes and executes the full effect of removing a
// category subtree, a report, or a user. All helpers run on the caller's
// transaction so a cascade is all-or-nothing.

// collectSubtreeLevels gathers the ids of the subtree rooted at rootID,
// level by level, via batched parent_id queries — no recursion, no
// in-memory pointer graph. Level 0 is the root itself.
func collectSubtreeLevels(tx *gorm.DB, rootID uint) ([][]uint, error) {
	levels := [][]uint{{rootID}}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var next []uint
		if err := tx.Model(&models.Category{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
	}
	return levels, nil
}

// flattenLevels concatenates level slices into one id list.
func flattenLevels(levels [][]uint) []uint {
	var ids []uint
	for _, level := range levels {
		ids = append(ids, level...)
	}
	return ids
}

// deleteSubtree removes every row referencing the subtree: approvals of its
// expenses, the expenses, guest tokens, permission grants, and finally the
// categories themselves, deepest level first so parent references are never
// dangling mid-cascade.
func deleteSubtree(tx *gorm.DB, levels [][]uint) error {
	ids := flattenLevels(levels)
	if len(ids) == 0 {
		return nil
	}

	var expenseIDs []uint
	if err := tx.Model(&models.Expense{}).
		Where("category_id IN ?", ids).
		Pluck("id", &expenseIDs).Error; err != nil {
		return err
	}
	if len(expenseIDs) > 0 {
		if err := tx.Where("expense_id IN ?", expenseIDs).Delete(&models.Approval{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", expenseIDs).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("category_id IN ?", ids).Delete(&models.GuestToken{}).Error; err != nil {
		return err
	}
	if err := tx.Where("category_id IN ?", ids).Delete(&models.CategoryPermission{}).Error; err != nil {
		return err
	}
	for i := len(levels) - 1; i >= 0; i-- {
		if err := tx.Where("id IN ?", levels[i]).Delete(&models.Category{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteReportCascade removes a report and everything beneath it: the root
// category's subtree and the report row itself.
func deleteReportCascade(tx *gorm.DB, reportID uint) error {
	var root models.Category
	err := tx.Where("report_id = ? AND parent_id IS NULL", reportID).First(&root).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Tolerate a report without a root so a half-created workspace can
		// still be removed.
	case err != nil:
		return err
	default:
		levels, err := collectSubtreeLevels(tx, root.ID)
		if err != nil {
			return err
		}
		if err := deleteSubtree(tx, levels); err != nil {
			return err
		}
	}
	return tx.Delete(&models.Report{}, reportID).Error
}

// anonymizeUser nulls the user's id on expenses and approvals that survive
// account deletion, preserving those rows for the remaining stakeholders.
// Rows inside reports the user owned are expected to be gone already.
func anonymizeUser(tx *gorm.DB, userID uint) error {
	if err := tx.Model(&models.Expense{}).
		Where("submitter_id = ?", userID).
		Update("submitter_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&models.Approval{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}

// deleteUserCascade removes every report the user owns, anonymizes their
// remaining expense/approval rows, and deletes the account itself.
func deleteUserCascade(tx *gorm.DB, userID uint) error {
	var reportIDs []uint
	if err := tx.Model(&models.Report{}).
		Where("owner_id = ?", userID).
		Pluck("id", &reportIDs).Error; err != nil {
		return err
	}
	for _, id := range reportIDs {
		if err := deleteReportCascade(tx, id); err != nil {
			return err
		}
	}
	if err := anonymizeUser(tx, userID); err != nil {
		return err
	}
	// Grants held by the user elsewhere go with the account.
	if err := tx.Where("user_id = ?", userID).Delete(&models.CategoryPermission{}).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.User{}, userID).Error; err != nil {
		return err
	}
	return nil
}

// wrapInternal hides storage errors behind the generic internal sentinel,
// passing AppErrors through untouched.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
