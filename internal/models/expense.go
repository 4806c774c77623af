package models

// ExpenseStatus is the approval state of an expense.
type ExpenseStatus string

const (
	StatusPendingReview ExpenseStatus = "PENDING_REVIEW"
	StatusPendingAdmin  ExpenseStatus = "PENDING_ADMIN"
	StatusApproved      ExpenseStatus = "APPROVED"
	StatusDenied        ExpenseStatus = "DENIED"
	StatusReimbursed    ExpenseStatus = "REIMBURSED"
)

// Expense is a submitted spend item. ReportID is denormalized from the
// category so cascade and listing queries never need a join. SubmitterID is
// NULL for guest submissions and after the submitter's account is deleted.
type Expense struct {
	Base
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	ReportID    uint          `gorm:"not null;index" json:"report_id"`
	SubmitterID *uint         `gorm:"index" json:"submitter_id,omitempty"`
	Amount      int64         `gorm:"not null" json:"amount"` // cents
	Description string        `json:"description"`
	Status      ExpenseStatus `gorm:"not null;default:PENDING_REVIEW" json:"status"`
	ReceiptRef  string        `json:"receipt_ref,omitempty"` // opaque storage reference
	GuestName   string        `json:"guest_name,omitempty"`
	GuestEmail  string        `json:"guest_email,omitempty"`

	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Submitter *User      `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	Approvals []Approval `gorm:"foreignKey:ExpenseID" json:"approvals,omitempty"`
}
