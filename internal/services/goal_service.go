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

// goalService handles savings goals and their contributions.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

func (s *goalService) CreateGoal(userID string, in GoalInput) (*GoalWithDetails, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if in.TargetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}
	if in.CurrentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount cannot be negative")
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		TargetDate:    normalizeDate(in.TargetDate),
	}
	goal.SyncCompletion(s.now().UTC())

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.withDetails(goal), nil
}

func (s *goalService) GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[GoalWithDetails], error) {
	page.Defaults()

	query := s.db.Model(&models.Goal{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.Goal
	if err := query.Order(page.OrderBy([]string{"name", "target_date", "created_at"}, "is_completed ASC, created_at ASC")).
		Scopes(pagination.Paginate(page)).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	items := make([]GoalWithDetails, len(goals))
	for i := range goals {
		items[i] = *s.withDetails(&goals[i])
	}
	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *goalService) GetGoalByID(userID, goalID string) (*GoalWithDetails, error) {
	goal, err := findGoal(s.db, userID, goalID)
	if err != nil {
		return nil, err
	}
	return s.withDetails(goal), nil
}

func (s *goalService) UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*GoalWithDetails, error) {
	goal, err := findGoal(s.db, userID, goalID)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name cannot be empty")
		}
		goal.Name = name
	}
	if fields.TargetAmount != nil {
		if *fields.TargetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
		}
		goal.TargetAmount = *fields.TargetAmount
	}
	if fields.ClearTargetDate {
		goal.TargetDate = nil
	} else if fields.TargetDate != nil {
		goal.TargetDate = normalizeDate(fields.TargetDate)
	}
	goal.SyncCompletion(s.now().UTC())

	if err := s.saveGoal(s.db, goal); err != nil {
		return nil, err
	}
	return s.withDetails(goal), nil
}

// DeleteGoal soft-deletes the goal and drops its contribution history.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := findGoal(s.db, userID, goalID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalContribution{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(goal).Update("share_token", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddContribution adds a positive amount to the goal's current amount.
func (s *goalService) AddContribution(userID, goalID string, in ContributionInput) (*models.GoalContribution, *GoalWithDetails, error) {
	if in.Amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contribution amount must be positive")
	}

	var contribution *models.GoalContribution
	var goal *models.Goal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		goal, err = findGoal(tx, userID, goalID)
		if err != nil {
			return err
		}

		date := in.Date
		if date.IsZero() {
			date = s.now()
		}
		contribution = &models.GoalContribution{
			UserID: userID,
			GoalID: goal.ID,
			Amount: in.Amount,
			Date:   finance.Midnight(finance.DateOf(date)),
			Note:   in.Note,
		}
		if err := tx.Create(contribution).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		goal.CurrentAmount += in.Amount
		goal.SyncCompletion(s.now().UTC())
		return s.saveGoal(tx, goal)
	})
	if err != nil {
		return nil, nil, err
	}
	return contribution, s.withDetails(goal), nil
}

func (s *goalService) GetContributions(userID, goalID string) ([]models.GoalContribution, error) {
	if _, err := findGoal(s.db, userID, goalID); err != nil {
		return nil, err
	}
	var contributions []models.GoalContribution
	if err := s.db.Where("goal_id = ? AND user_id = ?", goalID, userID).
		Order("date DESC, created_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return contributions, nil
}

// DeleteContribution removes a contribution and reverses its effect.
func (s *goalService) DeleteContribution(userID, goalID, contributionID string) (*GoalWithDetails, error) {
	var goal *models.Goal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		goal, err = findGoal(tx, userID, goalID)
		if err != nil {
			return err
		}

		var contribution models.GoalContribution
		if err := tx.Where("id = ? AND goal_id = ? AND user_id = ?", contributionID, goalID, userID).
			First(&contribution).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrContributionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&contribution).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		goal.CurrentAmount -= contribution.Amount
		if goal.CurrentAmount < 0 {
			goal.CurrentAmount = 0
		}
		goal.SyncCompletion(s.now().UTC())
		return s.saveGoal(tx, goal)
	})
	if err != nil {
		return nil, err
	}
	return s.withDetails(goal), nil
}

// ShareGoal returns the goal's public token, minting one on first use.
func (s *goalService) ShareGoal(userID, goalID string) (string, error) {
	goal, err := findGoal(s.db, userID, goalID)
	if err != nil {
		return "", err
	}
	if goal.ShareToken != nil {
		return *goal.ShareToken, nil
	}

	token := uuid.NewToken()
	if err := s.db.Model(goal).Update("share_token", token).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, nil
}

func (s *goalService) UnshareGoal(userID, goalID string) error {
	goal, err := findGoal(s.db, userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Model(goal).Update("share_token", nil).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSharedGoal resolves a public token without any owner context.
func (s *goalService) GetSharedGoal(token string) (*SharedGoal, error) {
	if token == "" {
		return nil, apperrors.ErrShareNotFound
	}
	var goal models.Goal
	if err := s.db.Where("share_token = ?", token).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShareNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	details := finance.CalculateGoalDetails(&goal, finance.DateOf(s.now()))
	return &SharedGoal{
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Percentage:    details.Percentage,
		TargetDate:    goal.TargetDate,
		IsCompleted:   goal.IsCompleted,
	}, nil
}

func (s *goalService) saveGoal(db *gorm.DB, goal *models.Goal) error {
	if err := db.Model(goal).Select("name", "target_amount", "current_amount", "target_date", "is_completed", "completed_at").
		Updates(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *goalService) withDetails(goal *models.Goal) *GoalWithDetails {
	return &GoalWithDetails{
		Goal:        *goal,
		GoalDetails: finance.CalculateGoalDetails(goal, finance.DateOf(s.now())),
		IsShared:    goal.ShareToken != nil,
	}
}

func findGoal(db *gorm.DB, userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := finance.Midnight(finance.DateOf(*t))
	return &d
}
