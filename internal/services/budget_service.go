package services

import (
	"errors"

	"cloud.google.com/go/civil"
	"gorm.io/gorm"

	"pocketpilot/internal/database"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db               *gorm.DB
	defaultThreshold float64
}

// NewBudgetService creates a new BudgetServicer. defaultThreshold applies to
// budgets without their own alert threshold.
func NewBudgetService(db *gorm.DB, defaultThreshold float64) BudgetServicer {
	if defaultThreshold <= 0 {
		defaultThreshold = finance.DefaultAlertThreshold
	}
	return &budgetService{db: db, defaultThreshold: defaultThreshold}
}

// CreateBudget creates the monthly budget for a category. Each category has
// at most one budget per owner.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
	}
	if err := validThreshold(in.AlertThreshold); err != nil {
		return nil, err
	}
	category, err := findCategory(s.db, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budgets can only track expense categories")
	}

	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     in.CategoryID,
		Amount:         in.Amount,
		Rollover:       in.Rollover,
		AlertThreshold: in.AlertThreshold,
	}
	if err := s.db.Create(budget).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrBudgetExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Category = category
	return budget, nil
}

// GetUserBudgets returns every budget with its figures for month.
func (s *budgetService) GetUserBudgets(userID string, month civil.Date) ([]BudgetWithDetails, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Category").Where("user_id = ?", userID).Order("created_at ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make([]BudgetWithDetails, 0, len(budgets))
	for i := range budgets {
		details, err := s.details(&budgets[i], month)
		if err != nil {
			return nil, err
		}
		result = append(result, *details)
	}
	return result, nil
}

func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return findBudget(s.db, userID, budgetID)
}

// GetBudgetDetails computes spent, remaining and status for one month.
func (s *budgetService) GetBudgetDetails(userID, budgetID string, month civil.Date) (*BudgetWithDetails, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.details(budget, month)
}

func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Rollover != nil {
		updates["rollover"] = *fields.Rollover
	}
	if fields.AlertThreshold != nil {
		if err := validThreshold(*fields.AlertThreshold); err != nil {
			return nil, err
		}
		updates["alert_threshold"] = *fields.AlertThreshold
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findBudget(s.db, userID, budgetID)
}

func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *budgetService) details(budget *models.Budget, month civil.Date) (*BudgetWithDetails, error) {
	start, end := finance.MonthBounds(month)
	spent, err := categorySpent(s.db, budget.UserID, budget.CategoryID, start, end)
	if err != nil {
		return nil, err
	}

	var rollover *int64
	if budget.Rollover {
		prevStart, _ := finance.MonthBounds(start.AddDays(-1))
		prevSpent, err := categorySpent(s.db, budget.UserID, budget.CategoryID, prevStart, start)
		if err != nil {
			return nil, err
		}
		carried := finance.RolloverFrom(budget.Amount, prevSpent)
		rollover = &carried
	}

	in := finance.BudgetInput{Amount: budget.Amount, Rollover: budget.Rollover, AlertThreshold: budget.AlertThreshold}
	return &BudgetWithDetails{
		Budget:        *budget,
		BudgetDetails: finance.CalculateBudgetDetails(in, spent, rollover, s.defaultThreshold),
		Month:         start.String()[:7],
	}, nil
}

// categorySpent sums expense magnitudes in a category over [start, end).
// Split parents are skipped because their children carry the categories,
// and transfers are not spending.
func categorySpent(db *gorm.DB, userID, categoryID string, start, end civil.Date) (int64, error) {
	var spent int64
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(-amount), 0)").
		Where("user_id = ? AND category_id = ? AND amount < 0", userID, categoryID).
		Where("is_split_parent = ? AND is_transfer = ?", false, false).
		Where("date >= ? AND date < ?", finance.Midnight(start), finance.Midnight(end)).
		Row().Scan(&spent); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

func validThreshold(threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
	}
	return nil
}

func findBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}
