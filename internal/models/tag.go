package models

import "time"

// Tag is a free-form colored label attached to transactions.
type Tag struct {
	Record
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"name"`
	Color  string `json:"color,omitempty"`
}

// TransactionTag is the join row between transactions and tags.
type TransactionTag struct {
	TransactionID string    `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	TagID         string    `gorm:"type:uuid;primaryKey" json:"tag_id"`
	CreatedAt     time.Time `json:"created_at"`
}
