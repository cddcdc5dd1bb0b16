package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pocketpilot/internal/assistant"
	"pocketpilot/internal/testutil"
)

type fakeChatModel struct {
	system string
	turns  []assistant.Turn
	reply  string
	err    error
}

func (f *fakeChatModel) Reply(_ context.Context, system string, turns []assistant.Turn) (string, error) {
	f.system = system
	f.turns = turns
	return f.reply, f.err
}

func TestAssistantChat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	category := testutil.CreateTestCategory(t, db, user.ID)
	testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, &category.ID, -4500, testutil.Date(2024, 3, 10))
	testutil.CreateTestBudget(t, db, user.ID, category.ID, 10000)
	testutil.CreateTestGoal(t, db, user.ID, 100000, 25000)

	model := &fakeChatModel{reply: "You have spent $45.00."}
	svc := NewAssistantService(db, model, 90).(*assistantService)
	svc.now = func() time.Time { return testutil.Date(2024, 3, 15) }

	history := []ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "Hello!"},
		{Role: "user", Content: "   "},
	}
	reply, err := svc.Chat(context.Background(), user.ID, "How much did I spend?", history)
	testutil.AssertNoError(t, err)
	if reply != model.reply {
		t.Errorf("unexpected reply %q", reply)
	}

	if len(model.turns) != 3 || model.turns[2].Content != "How much did I spend?" {
		t.Errorf("unexpected turns sent: %+v", model.turns)
	}
	for _, want := range []string{"Today is 2024-03-15.", account.Name, "spent $45.00 of $100.00", "$250.00 of $1,000.00"} {
		if !strings.Contains(model.system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, model.system)
		}
	}
}

func TestAssistantChatErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	t.Run("not_configured", func(t *testing.T) {
		_, err := NewAssistantService(db, nil, 90).Chat(context.Background(), user.ID, "hi", nil)
		testutil.AssertAppError(t, err, "ASSISTANT_NOT_CONFIGURED")
	})

	t.Run("empty_message", func(t *testing.T) {
		_, err := NewAssistantService(db, &fakeChatModel{}, 90).Chat(context.Background(), user.ID, " ", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("model_failure", func(t *testing.T) {
		model := &fakeChatModel{err: errors.New("quota exceeded")}
		_, err := NewAssistantService(db, model, 90).Chat(context.Background(), user.ID, "hi", nil)
		testutil.AssertAppError(t, err, "ASSISTANT_UNAVAILABLE")
	})

	t.Run("history_trimmed", func(t *testing.T) {
		model := &fakeChatModel{reply: "ok"}
		history := make([]ChatMessage, 50)
		for i := range history {
			history[i] = ChatMessage{Role: "user", Content: "m"}
		}
		_, err := NewAssistantService(db, model, 90).Chat(context.Background(), user.ID, "hi", history)
		testutil.AssertNoError(t, err)
		if len(model.turns) != maxChatHistory+1 {
			t.Errorf("expected %d turns, got %d", maxChatHistory+1, len(model.turns))
		}
	})
}
