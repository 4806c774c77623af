package models

// Approval is one append-only log row per applied status transition.
// UserID is NULL for guest actors and is nulled out if the actor's account
// is later deleted; the row itself is never updated or removed otherwise.
type Approval struct {
	Base
	ExpenseID    uint          `gorm:"not null;index" json:"expense_id"`
	UserID       *uint         `gorm:"index" json:"user_id,omitempty"`
	StatusChange ExpenseStatus `gorm:"not null" json:"status_change"`
	Notes        string        `json:"notes,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
