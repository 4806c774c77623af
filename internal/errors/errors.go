// Package errors provides custom error types for the Expenso API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
//
// ErrForbidden doubles as the response for mutations targeting entities the
// caller cannot see: a missing category or expense on a permission-gated path
// must be indistinguishable from one the caller lacks rights to.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidShareToken  = &AppError{Code: "INVALID_SHARE_TOKEN", Message: "Invalid or expired share link", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Report & category errors.
var (
	ErrReportNotFound       = &AppError{Code: "REPORT_NOT_FOUND", Message: "Report not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryHasExpenses  = &AppError{Code: "CATEGORY_HAS_EXPENSES", Message: "Category contains expenses", StatusCode: http.StatusForbidden}
	ErrCategoryHasChildren  = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has subcategories", StatusCode: http.StatusForbidden}
	ErrRootDeletionNotOwner = &AppError{Code: "ROOT_DELETION_NOT_OWNER", Message: "Only the report owner may delete the root category", StatusCode: http.StatusForbidden}
)

// Permission & share-link errors.
var (
	ErrPermissionNotFound = &AppError{Code: "PERMISSION_NOT_FOUND", Message: "No permission grant for this user and category", StatusCode: http.StatusNotFound}
	ErrShareLinkNotFound  = &AppError{Code: "SHARE_LINK_NOT_FOUND", Message: "Share link not found", StatusCode: http.StatusNotFound}
	ErrExpiryNotFuture    = &AppError{Code: "EXPIRY_NOT_FUTURE", Message: "Expiry must be in the future", StatusCode: http.StatusBadRequest}
)

// Expense & approval errors.
var (
	ErrExpenseNotFound      = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrInvalidExpenseStatus = &AppError{Code: "INVALID_EXPENSE_STATUS", Message: "Unknown expense status", StatusCode: http.StatusBadRequest}
	ErrTransitionNotAllowed = &AppError{Code: "TRANSITION_NOT_ALLOWED", Message: "Status transition not allowed for this actor", StatusCode: http.StatusForbidden}
)
