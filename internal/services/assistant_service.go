package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"pocketpilot/internal/assistant"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/finance"
	"pocketpilot/internal/logger"
	"pocketpilot/internal/pagination"
)

const (
	maxChatHistory = 20
	maxChatMessage = 4000
	chatTimeout    = 60 * time.Second
)

// assistantService answers questions using a snapshot of the owner's data.
type assistantService struct {
	model    assistant.ChatModel
	accounts AccountServicer
	budgets  BudgetServicer
	goals    GoalServicer
	now      func() time.Time
}

// NewAssistantService creates a new AssistantServicer. A nil model leaves
// the assistant unconfigured.
func NewAssistantService(db *gorm.DB, model assistant.ChatModel, defaultThreshold float64) AssistantServicer {
	return &assistantService{
		model:    model,
		accounts: NewAccountService(db),
		budgets:  NewBudgetService(db, defaultThreshold),
		goals:    NewGoalService(db),
		now:      time.Now,
	}
}

func (s *assistantService) Chat(ctx context.Context, userID, message string, history []ChatMessage) (string, error) {
	if s.model == nil {
		return "", apperrors.ErrAssistantNotConfigured
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "message is required")
	}
	if len(message) > maxChatMessage {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "message is too long")
	}

	snapshot, err := s.snapshot(userID)
	if err != nil {
		return "", err
	}

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	turns := make([]assistant.Turn, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, assistant.Turn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, assistant.Turn{Role: assistant.RoleUser, Content: message})

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	reply, err := s.model.Reply(ctx, snapshot.Prompt(), turns)
	if err != nil {
		logger.With("user_id", userID).Errorw("assistant reply failed", "error", err)
		return "", apperrors.Wrap(apperrors.ErrAssistantUnavailable, err)
	}
	return reply, nil
}

func (s *assistantService) snapshot(userID string) (*assistant.Snapshot, error) {
	today := finance.DateOf(s.now())
	snap := &assistant.Snapshot{Today: today}

	accounts, err := s.accounts.GetUserAccounts(userID, pagination.PageRequest{PageSize: 200})
	if err != nil {
		return nil, err
	}
	for _, a := range accounts.Data {
		snap.Accounts = append(snap.Accounts, assistant.AccountLine{
			Name:     a.Name,
			Type:     string(a.Type),
			Currency: a.Currency,
			Balance:  a.Balance,
		})
	}

	budgets, err := s.budgets.GetUserBudgets(userID, today)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		line := assistant.BudgetLine{
			Amount:     b.Budget.Amount,
			Spent:      b.Spent,
			Percentage: b.Percentage,
			Status:     string(b.Status),
		}
		if b.Category != nil {
			line.Category = b.Category.Name
		}
		snap.Budgets = append(snap.Budgets, line)
	}

	goals, err := s.goals.GetUserGoals(userID, pagination.PageRequest{PageSize: 200})
	if err != nil {
		return nil, err
	}
	for _, g := range goals.Data {
		line := assistant.GoalLine{
			Name:       g.Name,
			Target:     g.TargetAmount,
			Current:    g.CurrentAmount,
			Percentage: g.Percentage,
			Completed:  g.IsCompleted,
		}
		if g.TargetDate != nil {
			d := finance.DateOf(*g.TargetDate)
			line.TargetDate = &d
		}
		snap.Goals = append(snap.Goals, line)
	}
	return snap, nil
}
