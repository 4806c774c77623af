package models

import "time"

// Base contains common columns for all tables.
//
// There is deliberately no soft-delete column: cascade deletion must leave
// zero rows referencing a removed report, and anonymization (not deletion)
// is how user removal preserves history.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
