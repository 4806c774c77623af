package models

// Role is the access level a member holds from a grant boundary downward.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleReviewer  Role = "REVIEWER"
	RoleSubmitter Role = "SUBMITTER"
)

// CategoryPermission is an explicit grant boundary: the user's role applies
// at this category and every descendant. Unique per (user, category) pair.
type CategoryPermission struct {
	Base
	UserID     uint `gorm:"not null;uniqueIndex:idx_user_category" json:"user_id"`
	CategoryID uint `gorm:"not null;uniqueIndex:idx_user_category;index" json:"category_id"`
	Role       Role `gorm:"not null" json:"role"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
