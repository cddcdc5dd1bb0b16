package models

// RuleType selects how a categorization rule's pattern is compared.
type RuleType string

const (
	RuleTypeContains   RuleType = "contains"
	RuleTypeStartsWith RuleType = "starts_with"
	RuleTypeEndsWith   RuleType = "ends_with"
	RuleTypeExact      RuleType = "exact"
	RuleTypeRegex      RuleType = "regex"
)

// CategorizationRule assigns CategoryID to transactions whose description
// matches Pattern. RuleOrder is contiguous per owner starting at 0; the
// lowest matching active rule wins.
type CategorizationRule struct {
	Record
	UserID        string   `gorm:"type:uuid;not null;uniqueIndex:idx_rules_user_order" json:"user_id"`
	Name          string   `gorm:"not null" json:"name"`
	RuleOrder     int      `gorm:"not null;uniqueIndex:idx_rules_user_order" json:"rule_order"`
	RuleType      RuleType `gorm:"not null" json:"rule_type"`
	Pattern       string   `gorm:"not null" json:"pattern"`
	CaseSensitive bool     `gorm:"not null" json:"case_sensitive"`
	CategoryID    string   `gorm:"type:uuid;not null" json:"category_id"`
	IsActive      bool     `gorm:"not null" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
