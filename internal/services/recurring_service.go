package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"gorm.io/gorm"

	"pocketpilot/internal/database"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"
)

const (
	defaultUpcomingDays   = 30
	maxUpcomingDays       = 366
	maxUpcomingPerItem    = 60
	generateFailureReason = "failed to generate transaction"
)

// recurringService manages recurring templates and generates their transactions.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

func (s *recurringService) CreateRecurring(userID string, in RecurringInput) (*models.RecurringTransaction, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be zero")
	}
	if !validFrequency(in.Frequency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported frequency")
	}
	if _, err := findAccount(s.db, userID, in.AccountID); err != nil {
		return nil, err
	}
	if err := ensureCategory(s.db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	next := in.NextOccurrenceDate
	if next.IsZero() {
		next = time.Now()
	}

	rt := &models.RecurringTransaction{
		UserID:             userID,
		AccountID:          in.AccountID,
		CategoryID:         in.CategoryID,
		Description:        description,
		Amount:             in.Amount,
		Frequency:          in.Frequency,
		NextOccurrenceDate: finance.Midnight(finance.DateOf(next)),
		IsActive:           true,
	}
	if err := s.db.Create(rt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rt, nil
}

func (s *recurringService) GetUserRecurring(userID string, activeOnly bool) ([]models.RecurringTransaction, error) {
	query := s.db.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var items []models.RecurringTransaction
	if err := query.Order("next_occurrence_date ASC").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

func (s *recurringService) GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	return findRecurring(s.db, userID, recurringID)
}

func (s *recurringService) UpdateRecurring(userID, recurringID string, fields RecurringUpdateFields) (*models.RecurringTransaction, error) {
	rt, err := findRecurring(s.db, userID, recurringID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.AccountID != nil {
		if _, err := findAccount(s.db, userID, *fields.AccountID); err != nil {
			return nil, err
		}
		updates["account_id"] = *fields.AccountID
	}
	if fields.ClearCategory {
		updates["category_id"] = nil
	} else if fields.CategoryID != nil {
		if err := ensureCategory(s.db, userID, fields.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.Description != nil {
		description := strings.TrimSpace(*fields.Description)
		if description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot be empty")
		}
		updates["description"] = description
	}
	if fields.Amount != nil {
		if *fields.Amount == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Frequency != nil {
		if !validFrequency(*fields.Frequency) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported frequency")
		}
		updates["frequency"] = *fields.Frequency
	}
	if fields.NextOccurrenceDate != nil {
		updates["next_occurrence_date"] = finance.Midnight(finance.DateOf(*fields.NextOccurrenceDate))
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(rt).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findRecurring(s.db, userID, recurringID)
}

// DeleteRecurring removes the template. Transactions it already generated stay.
func (s *recurringService) DeleteRecurring(userID, recurringID string) error {
	rt, err := findRecurring(s.db, userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rt).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GenerateDue creates the pending occurrence of every active template due on
// or before today. An occurrence that already exists, whether found up front
// or rejected by the unique (template, date) index, only advances the
// template. Each template runs in its own database transaction so one
// failure does not stop the others.
func (s *recurringService) GenerateDue(userID string, today civil.Date) (*GenerateResult, error) {
	var due []models.RecurringTransaction
	if err := s.db.Where("user_id = ? AND is_active = ? AND next_occurrence_date <= ?", userID, true, finance.Midnight(today)).
		Order("next_occurrence_date ASC").
		Find(&due).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &GenerateResult{Transactions: []models.Transaction{}}
	log := logger.With("user_id", userID)

	for i := range due {
		rt := &due[i]
		created, err := s.generateOne(rt)
		if err != nil {
			log.Warnw("recurring generation failed", "recurring_transaction_id", rt.ID, "error", err)
			result.Errors = append(result.Errors, ItemError{ID: rt.ID, Error: generateFailureReason})
			continue
		}
		if created == nil {
			result.Skipped++
			continue
		}
		result.Created++
		result.Transactions = append(result.Transactions, *created)
	}

	return result, nil
}

// generateOne returns the new transaction, or nil when the occurrence
// already existed.
func (s *recurringService) generateOne(rt *models.RecurringTransaction) (*models.Transaction, error) {
	occurrence := finance.DateOf(rt.NextOccurrenceDate)
	occurrenceAt := finance.Midnight(occurrence)

	var created *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Unscoped().Model(&models.Transaction{}).
			Where("recurring_transaction_id = ? AND date = ?", rt.ID, occurrenceAt).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			t := &models.Transaction{
				UserID:                 rt.UserID,
				AccountID:              rt.AccountID,
				CategoryID:             rt.CategoryID,
				Date:                   occurrenceAt,
				Amount:                 rt.Amount,
				Description:            rt.Description,
				RecurringTransactionID: &rt.ID,
			}
			// A savepoint keeps the outer transaction usable when a
			// concurrent run inserted the same occurrence first.
			err := tx.Transaction(func(inner *gorm.DB) error {
				return inner.Create(t).Error
			})
			switch {
			case err == nil:
				created = t
			case database.IsUniqueViolation(err):
			default:
				return err
			}
		}

		next := finance.Midnight(finance.NextOccurrence(occurrence, rt.Frequency))
		return tx.Model(rt).Updates(map[string]interface{}{
			"next_occurrence_date": next,
			"last_created_date":    occurrenceAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GenerateAllDue runs GenerateDue for every owner with a due template.
func (s *recurringService) GenerateAllDue(today civil.Date) ([]OwnerGenerateResult, error) {
	var owners []string
	if err := s.db.Model(&models.RecurringTransaction{}).
		Where("is_active = ? AND next_occurrence_date <= ?", true, finance.Midnight(today)).
		Distinct().
		Pluck("user_id", &owners).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sort.Strings(owners)

	results := make([]OwnerGenerateResult, 0, len(owners))
	for _, userID := range owners {
		res, err := s.GenerateDue(userID, today)
		if err != nil {
			logger.Get().Errorw("recurring generation failed for owner", "user_id", userID, "error", err)
			results = append(results, OwnerGenerateResult{UserID: userID, Errors: 1})
			continue
		}
		results = append(results, OwnerGenerateResult{
			UserID:  userID,
			Created: res.Created,
			Skipped: res.Skipped,
			Errors:  len(res.Errors),
		})
	}
	return results, nil
}

// GetUpcoming projects active templates over the next days, including
// occurrences already due but not yet generated.
func (s *recurringService) GetUpcoming(userID string, today civil.Date, days int) ([]UpcomingOccurrence, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}
	if days > maxUpcomingDays {
		days = maxUpcomingDays
	}
	until := today.AddDays(days)

	templates, err := s.GetUserRecurring(userID, true)
	if err != nil {
		return nil, err
	}

	upcoming := []UpcomingOccurrence{}
	for _, rt := range templates {
		for _, d := range finance.OccurrencesBetween(finance.DateOf(rt.NextOccurrenceDate), until, rt.Frequency, maxUpcomingPerItem) {
			upcoming = append(upcoming, UpcomingOccurrence{
				RecurringTransactionID: rt.ID,
				Description:            rt.Description,
				Amount:                 rt.Amount,
				Date:                   finance.Midnight(d),
				AccountID:              rt.AccountID,
				CategoryID:             rt.CategoryID,
			})
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	return upcoming, nil
}

func validFrequency(f models.Frequency) bool {
	switch f {
	case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly, models.FrequencyYearly:
		return true
	}
	return false
}

func findRecurring(db *gorm.DB, userID, recurringID string) (*models.RecurringTransaction, error) {
	var rt models.RecurringTransaction
	if err := db.Where("id = ? AND user_id = ?", recurringID, userID).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rt, nil
}
