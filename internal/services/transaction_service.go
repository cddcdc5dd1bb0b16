package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
	"pocketpilot/internal/uuid"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a transaction. When no category is given the
// owner's active rules pick one from the description.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be zero")
	}
	if _, err := findAccount(s.db, userID, in.AccountID); err != nil {
		return nil, err
	}
	if err := ensureCategory(s.db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	categoryID := in.CategoryID
	if categoryID == nil && !in.IsTransfer {
		rules, err := loadRuleSet(s.db, userID)
		if err != nil {
			return nil, err
		}
		if rule, ok := rules.Match(description); ok {
			categoryID = &rule.CategoryID
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		CategoryID:  categoryID,
		Date:        finance.Midnight(finance.DateOf(date)),
		Amount:      in.Amount,
		Description: description,
		Notes:       in.Notes,
		IsTransfer:  in.IsTransfer,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, tagID := range in.TagIDs {
			if err := attachTag(tx, userID, transaction.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transaction.ID)
}

// GetUserTransactions lists top-level transactions (split children are
// nested under their parent) matching filter.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query := applyTransactionFilter(
		s.db.Model(&models.Transaction{}).Where("user_id = ? AND split_parent_id IS NULL", userID),
		filter,
	).Session(&gorm.Session{})

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query.
		Preload("Account").Preload("Category").Preload("Tags").Preload("Splits").
		Order(page.OrderBy([]string{"date", "amount", "description", "created_at"}, "date DESC, created_at DESC")).
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("date >= ?", finance.Midnight(finance.DateOf(*filter.FromDate)))
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", finance.Midnight(finance.DateOf(*filter.ToDate)))
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Uncategorized {
		query = query.Where("category_id IS NULL AND is_split_parent = ?", false)
	}
	if filter.TagID != nil {
		query = query.Where("id IN (?)",
			query.Session(&gorm.Session{NewDB: true}).
				Model(&models.TransactionTag{}).Select("transaction_id").Where("tag_id = ?", *filter.TagID))
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(notes) LIKE ?)", like, like)
	}
	return query
}

// GetTransactionByID retrieves a transaction with its relations and splits.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.
		Preload("Account").Preload("Category").Preload("Tags").
		Preload("Splits", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Splits.Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the non-nil fields. Split children are edited
// through their parent; a split parent keeps its amount until unsplit, and
// its account and date changes carry over to the children.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.SplitParentID != nil {
		return nil, apperrors.ErrSplitChild
	}

	updates := make(map[string]interface{})
	shared := make(map[string]interface{})

	if fields.AccountID != nil {
		if _, err := findAccount(s.db, userID, *fields.AccountID); err != nil {
			return nil, err
		}
		updates["account_id"] = *fields.AccountID
		shared["account_id"] = *fields.AccountID
	}
	if fields.ClearCategory {
		updates["category_id"] = nil
	} else if fields.CategoryID != nil {
		if err := ensureCategory(s.db, userID, fields.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.Date != nil {
		date := finance.Midnight(finance.DateOf(*fields.Date))
		updates["date"] = date
		shared["date"] = date
	}
	if fields.Amount != nil {
		if *fields.Amount == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be zero")
		}
		if transaction.IsSplitParent && *fields.Amount != transaction.Amount {
			return nil, apperrors.WithMessage(apperrors.ErrAlreadySplit, "Unsplit the transaction before changing its amount")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		description := strings.TrimSpace(*fields.Description)
		if description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot be empty")
		}
		updates["description"] = description
	}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.IsTransfer != nil {
		updates["is_transfer"] = *fields.IsTransfer
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(transaction).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if transaction.IsSplitParent && len(shared) > 0 {
				if err := tx.Model(&models.Transaction{}).
					Where("split_parent_id = ? AND user_id = ?", transaction.ID, userID).
					Updates(shared).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction and any split children.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return err
	}
	if transaction.SplitParentID != nil {
		return apperrors.ErrSplitChild
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := []string{transaction.ID}
		var childIDs []string
		if err := tx.Model(&models.Transaction{}).
			Where("split_parent_id = ?", transaction.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		ids = append(ids, childIDs...)

		if err := detachTransactions(tx, ids); err != nil {
			return err
		}
		if err := tx.Where("id IN ? AND user_id = ?", ids, userID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// SplitTransaction divides a transaction into categorized children whose
// magnitudes add up to the parent's. The parent flag and the children are
// written together, so a failed child leaves the parent untouched.
func (s *transactionService) SplitTransaction(userID, transactionID string, splits []SplitInput) (*models.Transaction, error) {
	parent, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if parent.SplitParentID != nil {
		return nil, apperrors.ErrSplitChild
	}
	if parent.IsSplitParent {
		return nil, apperrors.ErrAlreadySplit
	}

	amounts := make([]int64, len(splits))
	for i, sp := range splits {
		amounts[i] = sp.Amount
	}
	if v := finance.ValidateSplitAmounts(parent.Amount, amounts); !v.Valid {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, v.Message)
	}
	for _, sp := range splits {
		if err := ensureCategory(s.db, userID, sp.CategoryID); err != nil {
			return nil, err
		}
	}

	groupID := uuid.New()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(parent).Updates(map[string]interface{}{
			"is_split_parent": true,
			"split_group_id":  groupID,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, sp := range splits {
			description := strings.TrimSpace(sp.Description)
			if description == "" {
				description = parent.Description
			}
			child := &models.Transaction{
				UserID:        userID,
				AccountID:     parent.AccountID,
				CategoryID:    sp.CategoryID,
				Date:          parent.Date,
				Amount:        finance.SignLike(parent.Amount, sp.Amount),
				Description:   description,
				Notes:         sp.Notes,
				IsTransfer:    parent.IsTransfer,
				SplitParentID: &parent.ID,
				SplitGroupID:  &groupID,
			}
			if err := tx.Create(child).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// UnsplitTransaction removes the children and clears the parent's split flag.
func (s *transactionService) UnsplitTransaction(userID, transactionID string) (*models.Transaction, error) {
	parent, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if !parent.IsSplitParent {
		return nil, apperrors.ErrNotSplit
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var childIDs []string
		if err := tx.Model(&models.Transaction{}).
			Where("split_parent_id = ?", parent.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := detachTransactions(tx, childIDs); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("split_parent_id = ?", parent.ID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(parent).Updates(map[string]interface{}{
			"is_split_parent": false,
			"split_group_id":  nil,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
