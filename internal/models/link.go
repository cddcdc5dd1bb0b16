package models

// LinkType describes how two transactions relate.
type LinkType string

const (
	LinkTypeRefund        LinkType = "refund"
	LinkTypeRelated       LinkType = "related"
	LinkTypePartialRefund LinkType = "partial_refund"
	LinkTypeChargeback    LinkType = "chargeback"
)

// TransactionLink connects a source transaction to a target transaction.
type TransactionLink struct {
	Record
	UserID              string   `gorm:"type:uuid;not null;index" json:"user_id"`
	SourceTransactionID string   `gorm:"type:uuid;not null;uniqueIndex:idx_links_unique" json:"source_transaction_id"`
	TargetTransactionID string   `gorm:"type:uuid;not null;uniqueIndex:idx_links_unique" json:"target_transaction_id"`
	LinkType            LinkType `gorm:"not null;uniqueIndex:idx_links_unique" json:"link_type"`
	Notes               string   `json:"notes,omitempty"`

	SourceTransaction *Transaction `gorm:"foreignKey:SourceTransactionID" json:"source_transaction,omitempty"`
	TargetTransaction *Transaction `gorm:"foreignKey:TargetTransactionID" json:"target_transaction,omitempty"`
}
