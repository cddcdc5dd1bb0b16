package models

import "time"

// Frequency is the cadence of a recurring transaction.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// RecurringTransaction is a template that generates concrete transactions.
// NextOccurrenceDate only ever moves forward.
type RecurringTransaction struct {
	Base
	UserID             string     `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID          string     `gorm:"type:uuid;not null" json:"account_id"`
	CategoryID         *string    `gorm:"type:uuid" json:"category_id,omitempty"`
	Description        string     `gorm:"not null" json:"description"`
	Amount             int64      `gorm:"type:bigint;not null" json:"amount"`
	Frequency          Frequency  `gorm:"not null" json:"frequency"`
	NextOccurrenceDate time.Time  `gorm:"not null;index" json:"next_occurrence_date"`
	LastCreatedDate    *time.Time `json:"last_created_date,omitempty"`
	IsActive           bool       `gorm:"not null" json:"is_active"`
}
