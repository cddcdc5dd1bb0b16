package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account. A non-zero initial balance is recorded as
// an opening transaction so the balance stays derivable from transactions.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	accountType := in.Type
	if accountType == "" {
		accountType = models.AccountTypeChecking
	}
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "USD"
	}

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		Type:        accountType,
		Description: in.Description,
		Currency:    currency,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if in.InitialBalance != 0 {
			now := time.Now().UTC()
			opening := &models.Transaction{
				UserID:      userID,
				AccountID:   account.ID,
				Amount:      in.InitialBalance,
				Description: "Initial balance",
				Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			}
			if err := tx.Create(opening).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	account.Balance = in.InitialBalance
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts with derived balances.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order(page.OrderBy([]string{"name", "created_at"}, "name ASC")).
		Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := fillBalances(s.db, userID, accounts); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	account, err := findAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	accounts := []models.Account{*account}
	if err := fillBalances(s.db, userID, accounts); err != nil {
		return nil, err
	}
	return &accounts[0], nil
}

// UpdateAccount applies the non-nil fields.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := findAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetAccountByID(userID, accountID)
}

// DeleteAccount soft-deletes the account together with its transactions and
// recurring templates.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := findAccount(s.db, userID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var txIDs []string
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND user_id = ?", account.ID, userID).
			Pluck("id", &txIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := detachTransactions(tx, txIDs); err != nil {
			return err
		}
		if err := tx.Where("account_id = ? AND user_id = ?", account.ID, userID).
			Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("account_id = ? AND user_id = ?", account.ID, userID).
			Delete(&models.RecurringTransaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func findAccount(db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

type accountBalance struct {
	AccountID string
	Balance   int64
}

// fillBalances sets Balance on each account to the sum of its transactions.
// Split children are excluded because their parent already carries the total.
func fillBalances(db *gorm.DB, userID string, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	ids := make([]string, len(accounts))
	for i := range accounts {
		ids[i] = accounts[i].ID
	}

	var rows []accountBalance
	if err := db.Model(&models.Transaction{}).
		Select("account_id, COALESCE(SUM(amount), 0) AS balance").
		Where("user_id = ? AND account_id IN ? AND split_parent_id IS NULL", userID, ids).
		Group("account_id").
		Scan(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byID := make(map[string]int64, len(rows))
	for _, r := range rows {
		byID[r.AccountID] = r.Balance
	}
	for i := range accounts {
		accounts[i].Balance = byID[accounts[i].ID]
	}
	return nil
}

// detachTransactions removes the tag joins and links that reference ids.
func detachTransactions(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("transaction_id IN ?", ids).Delete(&models.TransactionTag{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Where("source_transaction_id IN ? OR target_transaction_id IN ?", ids, ids).
		Delete(&models.TransactionLink{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
