package services

import (
	"time"

	"expenso/internal/authz"
	"expenso/internal/models"
	"expenso/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	// DeleteAccount removes the user: reports they own are cascade-deleted,
	// and their expenses/approvals in other people's reports are anonymized.
	DeleteAccount(userID uint) error
}

// ReportServicer defines the contract for report workspaces.
type ReportServicer interface {
	// CreateReport creates a report and its root category atomically.
	CreateReport(ownerID uint, name string) (*models.Report, error)
	GetReport(p authz.Principal, reportID uint) (*models.Report, error)
	ListReports(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Report], error)
	// DeleteReport cascade-deletes the report; owner only.
	DeleteReport(userID, reportID uint) error
}

// DeleteCategoryResult tells the caller whether removing a category took the
// whole report with it (root deletion) or just the subtree.
type DeleteCategoryResult struct {
	ReportDeleted bool `json:"report_deleted"`
	ReportID      uint `json:"report_id"`
}

// CategoryServicer defines the contract for category-tree operations.
type CategoryServicer interface {
	CreateSubcategory(p authz.Principal, parentID uint, name string, budget int64) (*models.Category, error)
	GetCategory(p authz.Principal, categoryID uint) (*models.Category, error)
	UpdateCategory(p authz.Principal, categoryID uint, name *string, budget *int64) (*models.Category, error)
	DeleteCategory(p authz.Principal, categoryID uint) (*DeleteCategoryResult, error)
}

// PermissionServicer defines the contract for grants and share links.
type PermissionServicer interface {
	// Grant upserts a (user, category, role) row. The bool is true when a new
	// grant was created, false when an existing one was updated.
	Grant(p authz.Principal, categoryID, targetUserID uint, role models.Role) (*models.CategoryPermission, bool, error)
	Revoke(p authz.Principal, categoryID, targetUserID uint) error
	List(p authz.Principal, categoryID uint) ([]models.CategoryPermission, error)
	CreateShareLink(p authz.Principal, categoryID uint, level models.PermissionLevel, expiresAt *time.Time) (*models.GuestToken, error)
	ListShareLinks(p authz.Principal, categoryID uint) ([]models.GuestToken, error)
	RevokeShareLink(p authz.Principal, categoryID, linkID uint) error
	// LookupGuestToken resolves an opaque share-link secret, re-checking
	// expiry against the wall clock on every call.
	LookupGuestToken(secret string) (*models.GuestToken, error)
}

// SubmitExpenseInput carries the submission payload. Guest fields are only
// meaningful for guest principals.
type SubmitExpenseInput struct {
	Amount      int64
	Description string
	ReceiptRef  string
	GuestName   string
	GuestEmail  string
}

// ExpenseServicer defines the contract for expense lifecycle operations.
type ExpenseServicer interface {
	Submit(p authz.Principal, categoryID uint, in SubmitExpenseInput) (*models.Expense, error)
	GetExpense(p authz.Principal, expenseID uint) (*models.Expense, error)
	ListCategoryExpenses(p authz.Principal, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	ListApprovals(p authz.Principal, expenseID uint) ([]models.Approval, error)
	// UpdateStatus applies an approval-state transition and appends one
	// Approval row, atomically.
	UpdateStatus(p authz.Principal, expenseID uint, requested models.ExpenseStatus, notes string) (*models.Expense, error)
	DeleteExpense(p authz.Principal, expenseID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
