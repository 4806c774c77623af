package models

// Report is a named workspace owned by exactly one user. Every report has
// exactly one root category (parent_id NULL), created atomically with it.
type Report struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`

	Owner      *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Categories []Category `gorm:"foreignKey:ReportID" json:"categories,omitempty"`
}
