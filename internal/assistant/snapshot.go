package assistant

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"pocketpilot/internal/money"
)

// Snapshot is the financial context the assistant answers from.
type Snapshot struct {
	Today    civil.Date
	Accounts []AccountLine
	Budgets  []BudgetLine
	Goals    []GoalLine
}

// AccountLine summarises one account.
type AccountLine struct {
	Name     string
	Type     string
	Currency string
	Balance  int64
}

// BudgetLine summarises one budget for the current month.
type BudgetLine struct {
	Category   string
	Amount     int64
	Spent      int64
	Percentage float64
	Status     string
}

// GoalLine summarises one savings goal.
type GoalLine struct {
	Name       string
	Target     int64
	Current    int64
	Percentage float64
	TargetDate *civil.Date
	Completed  bool
}

const instructions = `You are Pocket Pilot, a personal finance assistant.
Answer using only the figures below and the conversation. Keep answers short
and practical. When the data cannot answer a question, say so plainly.
Never invent transactions or balances.`

// Prompt renders the snapshot as the model's system instruction.
func (s Snapshot) Prompt() string {
	var b strings.Builder
	b.WriteString(instructions)
	fmt.Fprintf(&b, "\n\nToday is %s.\n", s.Today)

	b.WriteString("\nAccounts:\n")
	if len(s.Accounts) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range s.Accounts {
		fmt.Fprintf(&b, "- %s (%s): %s\n", a.Name, a.Type, money.Format(a.Balance, a.Currency))
	}

	b.WriteString("\nBudgets this month:\n")
	if len(s.Budgets) == 0 {
		b.WriteString("- none\n")
	}
	for _, bl := range s.Budgets {
		fmt.Fprintf(&b, "- %s: spent %s of %s (%.1f%%, %s)\n",
			bl.Category, money.FormatUSD(bl.Spent), money.FormatUSD(bl.Amount), bl.Percentage, bl.Status)
	}

	b.WriteString("\nGoals:\n")
	if len(s.Goals) == 0 {
		b.WriteString("- none\n")
	}
	for _, g := range s.Goals {
		fmt.Fprintf(&b, "- %s: %s of %s (%.1f%%)", g.Name, money.FormatUSD(g.Current), money.FormatUSD(g.Target), g.Percentage)
		if g.TargetDate != nil {
			fmt.Fprintf(&b, ", due %s", g.TargetDate)
		}
		if g.Completed {
			b.WriteString(", completed")
		}
		b.WriteString("\n")
	}
	return b.String()
}
