package models

// Category is a node of a report's category tree. Exactly one category per
// report has a NULL parent (the root); every other category's parent chain
// terminates at that root.
type Category struct {
	Base
	ReportID uint   `gorm:"not null;index" json:"report_id"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	Name     string `gorm:"not null" json:"name"`
	Budget   int64  `gorm:"not null;default:0" json:"budget"` // cents

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Expenses []Expense  `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}

// IsRoot reports whether the category is its report's root.
func (c *Category) IsRoot() bool { return c.ParentID == nil }
