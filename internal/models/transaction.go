package models

import "time"

// Transaction is a single signed money movement on an account.
// Negative amounts are expenses, positive amounts are income.
type Transaction struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID   string    `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string   `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Date        time.Time `gorm:"not null;index;uniqueIndex:idx_recurring_occurrence" json:"date"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Description string    `gorm:"not null" json:"description"`
	Notes       string    `json:"notes,omitempty"`
	IsTransfer  bool      `gorm:"not null" json:"is_transfer"`

	// Split linkage: a parent carries IsSplitParent, children point at it.
	IsSplitParent bool    `gorm:"not null" json:"is_split_parent"`
	SplitParentID *string `gorm:"type:uuid;index" json:"split_parent_id,omitempty"`
	SplitGroupID  *string `gorm:"type:uuid" json:"split_group_id,omitempty"`

	// Set when generated from a recurring template; unique per occurrence date.
	RecurringTransactionID *string `gorm:"type:uuid;uniqueIndex:idx_recurring_occurrence" json:"recurring_transaction_id,omitempty"`

	Account  *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []Tag     `gorm:"many2many:transaction_tags;" json:"tags,omitempty"`

	Splits []Transaction `gorm:"foreignKey:SplitParentID" json:"splits,omitempty"`
}

// IsExpense reports whether the transaction takes money out.
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

// Kind returns "expense" or "income" from the sign of the amount.
func (t *Transaction) Kind() string {
	if t.IsExpense() {
		return "expense"
	}
	return "income"
}
