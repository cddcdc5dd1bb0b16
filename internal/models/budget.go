package models

// Budget is a monthly spending limit for one category.
// Spent, remaining and percentage are derived at read time.
type Budget struct {
	Record
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"user_id"`
	CategoryID string `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"category_id"`
	Amount     int64  `gorm:"type:bigint;not null" json:"amount"`
	Rollover   bool   `gorm:"not null" json:"rollover"`

	// AlertThreshold is the warning percentage; zero means the configured default.
	AlertThreshold float64 `gorm:"not null" json:"alert_threshold"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
