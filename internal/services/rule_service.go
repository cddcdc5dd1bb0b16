package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pocketpilot/internal/database"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"
)

const (
	ruleTestScanLimit  = 500
	ruleTestMatchLimit = 20
)

// ruleService manages categorization rules and applies them to transactions.
type ruleService struct {
	db *gorm.DB
}

// NewRuleService creates a new RuleServicer.
func NewRuleService(db *gorm.DB) RuleServicer {
	return &ruleService{db: db}
}

// CreateRule appends a rule after the owner's existing ones.
func (s *ruleService) CreateRule(userID string, in RuleInput) (*models.CategorizationRule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rule name is required")
	}
	if !finance.ValidPattern(in.RuleType, in.Pattern) {
		return nil, invalidPattern(in.RuleType)
	}
	if err := ensureCategory(s.db, userID, &in.CategoryID); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	rule := &models.CategorizationRule{
		UserID:        userID,
		Name:          name,
		RuleType:      in.RuleType,
		Pattern:       in.Pattern,
		CaseSensitive: in.CaseSensitive,
		CategoryID:    in.CategoryID,
		IsActive:      active,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder sql.NullInt64
		if err := tx.Model(&models.CategorizationRule{}).
			Where("user_id = ?", userID).
			Select("MAX(rule_order)").
			Row().Scan(&maxOrder); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if maxOrder.Valid {
			rule.RuleOrder = int(maxOrder.Int64) + 1
		}
		if err := tx.Create(rule).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.WithMessage(apperrors.ErrConflict, "Rules were modified concurrently, please retry")
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetUserRules lists rules in evaluation order.
func (s *ruleService) GetUserRules(userID string) ([]models.CategorizationRule, error) {
	var rules []models.CategorizationRule
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("rule_order ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

func (s *ruleService) GetRuleByID(userID, ruleID string) (*models.CategorizationRule, error) {
	return findRule(s.db, userID, ruleID)
}

func (s *ruleService) UpdateRule(userID, ruleID string, fields RuleUpdateFields) (*models.CategorizationRule, error) {
	rule, err := findRule(s.db, userID, ruleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rule name cannot be empty")
		}
		updates["name"] = name
	}

	ruleType, pattern := rule.RuleType, rule.Pattern
	if fields.RuleType != nil {
		ruleType = *fields.RuleType
		updates["rule_type"] = ruleType
	}
	if fields.Pattern != nil {
		pattern = *fields.Pattern
		updates["pattern"] = pattern
	}
	if !finance.ValidPattern(ruleType, pattern) {
		return nil, invalidPattern(ruleType)
	}

	if fields.CaseSensitive != nil {
		updates["case_sensitive"] = *fields.CaseSensitive
	}
	if fields.CategoryID != nil {
		if err := ensureCategory(s.db, userID, fields.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(rule).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findRule(s.db, userID, ruleID)
}

// DeleteRule removes a rule and closes the gap it leaves in the order.
func (s *ruleService) DeleteRule(userID, ruleID string) error {
	rule, err := findRule(s.db, userID, ruleID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(rule).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return compactRuleOrder(tx, userID)
	})
}

// ReorderRules assigns rule_order 0..N-1 following ruleIDs, which must name
// every one of the owner's rules exactly once. Orders first move to negative
// placeholders so the unique (user, order) index never sees a collision
// mid-way, and both passes share one database transaction.
func (s *ruleService) ReorderRules(userID string, ruleIDs []string) ([]models.CategorizationRule, error) {
	var existing []string
	if err := s.db.Model(&models.CategorizationRule{}).
		Where("user_id = ?", userID).
		Pluck("id", &existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(existing) != len(ruleIDs) {
		return nil, apperrors.ErrInvalidReorder
	}
	owned := make(map[string]bool, len(existing))
	for _, id := range existing {
		owned[id] = true
	}
	seen := make(map[string]bool, len(ruleIDs))
	for _, id := range ruleIDs {
		if !owned[id] || seen[id] {
			return nil, apperrors.ErrInvalidReorder
		}
		seen[id] = true
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ruleIDs {
			if err := tx.Model(&models.CategorizationRule{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("rule_order", -(i + 1)).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		for i, id := range ruleIDs {
			if err := tx.Model(&models.CategorizationRule{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("rule_order", i).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserRules(userID)
}

// ApplyRules runs the active rules over the owner's transactions. The first
// matching rule wins. A failed update is reported for that transaction and
// the run carries on.
func (s *ruleService) ApplyRules(userID string, opts ApplyRulesOptions) (*ApplyRulesResult, error) {
	result := &ApplyRulesResult{DryRun: opts.DryRun, Matches: []RuleMatch{}}

	rules, err := loadRuleSet(s.db, userID)
	if err != nil {
		return nil, err
	}
	if rules.Len() == 0 {
		result.Message = "No active rules to apply"
		return result, nil
	}

	query := s.db.Where("user_id = ? AND is_split_parent = ? AND is_transfer = ?", userID, false, false)
	if opts.UncategorizedOnly {
		query = query.Where("category_id IS NULL")
	}
	var transactions []models.Transaction
	if err := query.Order("date DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	names, err := categoryNames(s.db, userID)
	if err != nil {
		return nil, err
	}

	log := logger.With("user_id", userID, "dry_run", opts.DryRun)
	for i := range transactions {
		t := &transactions[i]
		result.TotalChecked++

		rule, ok := rules.Match(t.Description)
		if !ok {
			continue
		}

		if !opts.DryRun && (t.CategoryID == nil || *t.CategoryID != rule.CategoryID) {
			if err := s.db.Model(t).Update("category_id", rule.CategoryID).Error; err != nil {
				log.Warnw("failed to apply categorization rule", "transaction_id", t.ID, "rule_id", rule.ID, "error", err)
				result.Errors = append(result.Errors, ItemError{ID: t.ID, Error: "failed to update category"})
				continue
			}
		}

		result.TotalMatched++
		result.Matches = append(result.Matches, RuleMatch{
			TransactionID:      t.ID,
			Description:        t.Description,
			RuleID:             rule.ID,
			RuleName:           rule.Name,
			CategoryID:         rule.CategoryID,
			CategoryName:       names[rule.CategoryID],
			PreviousCategoryID: t.CategoryID,
		})
	}

	if opts.DryRun {
		result.Message = fmt.Sprintf("%d of %d transactions would be categorized", result.TotalMatched, result.TotalChecked)
	} else {
		result.Message = fmt.Sprintf("Categorized %d of %d transactions", result.TotalMatched, result.TotalChecked)
	}
	return result, nil
}

// TestRule evaluates an unsaved rule against a sample description and the
// owner's most recent transactions.
func (s *ruleService) TestRule(userID string, in RuleTestInput) (*RuleTestResult, error) {
	if !finance.ValidPattern(in.RuleType, in.Pattern) {
		return nil, invalidPattern(in.RuleType)
	}

	matcher := finance.CompileMatcher(in.RuleType, in.Pattern, in.CaseSensitive)
	result := &RuleTestResult{
		Matches:              in.Description != "" && matcher.Match(in.Description),
		MatchingTransactions: []models.Transaction{},
	}

	var recent []models.Transaction
	if err := s.db.Where("user_id = ? AND is_split_parent = ?", userID, false).
		Order("date DESC").
		Limit(ruleTestScanLimit).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range recent {
		if matcher.Match(t.Description) {
			result.MatchingTransactions = append(result.MatchingTransactions, t)
			if len(result.MatchingTransactions) == ruleTestMatchLimit {
				break
			}
		}
	}
	return result, nil
}

func invalidPattern(ruleType models.RuleType) error {
	if ruleType == models.RuleTypeRegex {
		return apperrors.ErrInvalidPattern
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "pattern is required")
}

func findRule(db *gorm.DB, userID, ruleID string) (*models.CategorizationRule, error) {
	var rule models.CategorizationRule
	if err := db.Preload("Category").Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// loadRuleSet compiles the owner's active rules.
func loadRuleSet(db *gorm.DB, userID string) (*finance.RuleSet, error) {
	var rules []models.CategorizationRule
	if err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("rule_order ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return finance.NewRuleSet(rules), nil
}

// compactRuleOrder renumbers the owner's rules to 0..N-1 keeping their
// relative order. Orders only ever move down, so walking upwards never
// collides with a row that has not moved yet.
func compactRuleOrder(tx *gorm.DB, userID string) error {
	var rules []models.CategorizationRule
	if err := tx.Where("user_id = ?", userID).Order("rule_order ASC").Find(&rules).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range rules {
		if rules[i].RuleOrder == i {
			continue
		}
		if err := tx.Model(&rules[i]).Update("rule_order", i).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

func categoryNames(db *gorm.DB, userID string) (map[string]string, error) {
	var categories []models.Category
	if err := db.Select("id", "name").Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}
