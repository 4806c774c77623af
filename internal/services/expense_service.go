package services

import (
	"errors"

	"gorm.io/gorm"

	"expenso/internal/authz"
	"expenso/internal/database"
	apperrors "expenso/internal/errors"
	"expenso/internal/models"
	"expenso/internal/pagination"
	"expenso/internal/workflow"
)

// expenseService handles the expense lifecycle.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// Submit creates an expense in PENDING_REVIEW. Members need SUBMITTER or
// better at the category; guests need a SUBMIT_ONLY link. Guest submissions
// have no submitter id — the optional guest name/email is all the identity
// they carry.
func (s *expenseService) Submit(p authz.Principal, categoryID uint, in SubmitExpenseInput) (*models.Expense, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var expense *models.Expense
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		acc, err := authz.Resolve(tx, p, categoryID)
		if err != nil {
			return err
		}
		if !authz.Allowed(acc, authz.ActionSubmitExpense) {
			return apperrors.ErrForbidden
		}

		var category models.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			return err
		}

		expense = &models.Expense{
			CategoryID:  categoryID,
			ReportID:    category.ReportID,
			Amount:      in.Amount,
			Description: in.Description,
			ReceiptRef:  in.ReceiptRef,
			Status:      models.StatusPendingReview,
		}
		if uid, ok := p.UserID(); ok {
			expense.SubmitterID = &uid
		} else {
			expense.GuestName = in.GuestName
			expense.GuestEmail = in.GuestEmail
		}
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return expense, nil
}

// GetExpense retrieves one expense for any principal that can view its
// category. Missing and inaccessible are the same answer.
func (s *expenseService) GetExpense(p authz.Principal, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, wrapInternal(err)
	}

	acc, err := authz.Resolve(s.db, p, expense.CategoryID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if !authz.Allowed(acc, authz.ActionViewCategory) {
		return nil, apperrors.ErrForbidden
	}
	return &expense, nil
}

// ListCategoryExpenses returns the expenses of one category (not its
// descendants), newest first.
func (s *expenseService) ListCategoryExpenses(p authz.Principal, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	acc, err := authz.Resolve(s.db, p, categoryID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if !authz.Allowed(acc, authz.ActionViewCategory) {
		return nil, apperrors.ErrForbidden
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("category_id = ?", categoryID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, wrapInternal(err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).Order("id DESC").Find(&expenses).Error; err != nil {
		return nil, wrapInternal(err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListApprovals returns the expense's append-only approval log, oldest
// first.
func (s *expenseService) ListApprovals(p authz.Principal, expenseID uint) ([]models.Approval, error) {
	if _, err := s.GetExpense(p, expenseID); err != nil {
		return nil, err
	}
	var approvals []models.Approval
	if err := s.db.Where("expense_id = ?", expenseID).Order("id").Find(&approvals).Error; err != nil {
		return nil, wrapInternal(err)
	}
	return approvals, nil
}

// UpdateStatus applies one state-machine transition and appends the
// corresponding Approval row, atomically. The actor's access is re-resolved
// inside the transaction so a concurrent revoke cannot slip a transition
// through.
func (s *expenseService) UpdateStatus(p authz.Principal, expenseID uint, requested models.ExpenseStatus, notes string) (*models.Expense, error) {
	var expense models.Expense
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&expense, expenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrForbidden
			}
			return err
		}

		acc, err := authz.Resolve(tx, p, expense.CategoryID)
		if err != nil {
			return err
		}
		if !authz.Allowed(acc, authz.ActionActOnExpense) {
			return apperrors.ErrForbidden
		}

		next, err := workflow.Next(expense.Status, workflow.ClassOf(acc), requested)
		if err != nil {
			return err
		}

		if err := tx.Model(&expense).Update("status", next).Error; err != nil {
			return err
		}
		expense.Status = next

		approval := &models.Approval{
			ExpenseID:    expense.ID,
			StatusChange: next,
			Notes:        notes,
		}
		if uid, ok := p.UserID(); ok {
			approval.UserID = &uid
		}
		return tx.Create(approval).Error
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return &expense, nil
}

// DeleteExpense removes an expense and its approval log. Allowed for the
// original submitter while the expense is still PENDING_REVIEW, or for any
// principal resolving to REVIEWER or better at the expense's category.
func (s *expenseService) DeleteExpense(p authz.Principal, expenseID uint) error {
	err := database.InTransaction(s.db, func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.First(&expense, expenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrForbidden
			}
			return err
		}

		allowed := false
		if uid, ok := p.UserID(); ok &&
			expense.SubmitterID != nil && *expense.SubmitterID == uid &&
			expense.Status == models.StatusPendingReview {
			allowed = true
		}
		if !allowed {
			acc, err := authz.Resolve(tx, p, expense.CategoryID)
			if err != nil {
				return err
			}
			allowed = authz.Allowed(acc, authz.ActionActOnExpense)
		}
		if !allowed {
			return apperrors.ErrForbidden
		}

		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.Approval{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Expense{}, expense.ID).Error
	})
	return wrapInternal(err)
}
