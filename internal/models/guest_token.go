package models

import "time"

// PermissionLevel is the access a share link confers on its one category.
type PermissionLevel string

const (
	LevelSubmitOnly PermissionLevel = "SUBMIT_ONLY"
	LevelReviewOnly PermissionLevel = "REVIEW_ONLY"
)

// GuestToken is a share link: an opaque secret scoped to a single category,
// optionally time-boxed. Holders are always guests — never members, never
// admins.
type GuestToken struct {
	Base
	Token           string          `gorm:"uniqueIndex;not null" json:"token"`
	CategoryID      uint            `gorm:"not null;index" json:"category_id"`
	PermissionLevel PermissionLevel `gorm:"not null" json:"permission_level"`
	CreatedBy       uint            `gorm:"not null" json:"created_by"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Expired reports whether the token is past its expiry at the given instant.
// Tokens without an expiry never expire.
func (t *GuestToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// Role maps the share-link level onto the member role lattice.
func (t *GuestToken) Role() Role {
	if t.PermissionLevel == LevelReviewOnly {
		return RoleReviewer
	}
	return RoleSubmitter
}
