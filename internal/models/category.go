package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeTransfer CategoryType = "transfer"
)

// Category labels transactions. Referenced categories are archived rather
// than deleted so historical categorization survives.
type Category struct {
	Base
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string       `gorm:"not null" json:"name"`
	Type         CategoryType `gorm:"not null" json:"type"`
	Color        string       `json:"color,omitempty"`
	Icon         string       `json:"icon,omitempty"`
	IsTaxRelated bool         `gorm:"not null" json:"is_tax_related"`
	TaxTag       string       `json:"tax_tag,omitempty"`
	IsArchived   bool         `gorm:"not null;index" json:"is_archived"`
}
