package finance

import (
	"cloud.google.com/go/civil"

	"pocketpilot/internal/models"
	"pocketpilot/internal/money"
)

// MilestonePercents are the progress marks reported for every goal.
var MilestonePercents = []int{25, 50, 75, 100}

// Milestone is one progress mark and whether the goal has reached it.
type Milestone struct {
	Percent int   `json:"percent"`
	Amount  int64 `json:"amount"`
	Reached bool  `json:"reached"`
}

// GoalDetails are the values derived from a goal at read time.
type GoalDetails struct {
	Percentage      float64     `json:"percentage"`
	Remaining       int64       `json:"remaining"`
	MonthlyRequired *int64      `json:"monthly_required"`
	IsOverdue       bool        `json:"is_overdue"`
	MonthsRemaining *int        `json:"months_remaining,omitempty"`
	Milestones      []Milestone `json:"milestones"`
}

// CalculateGoalDetails derives progress for goal as of today.
//
// A target date equal to today leaves zero whole months, so the goal is
// neither overdue nor given a monthly amount.
func CalculateGoalDetails(goal *models.Goal, today civil.Date) GoalDetails {
	d := GoalDetails{Remaining: goal.TargetAmount - goal.CurrentAmount}
	if d.Remaining < 0 {
		d.Remaining = 0
	}

	if goal.TargetAmount > 0 {
		pct := float64(goal.CurrentAmount) / float64(goal.TargetAmount) * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
		d.Percentage = pct
	}

	d.Milestones = make([]Milestone, len(MilestonePercents))
	for i, p := range MilestonePercents {
		amount := money.Divide(goal.TargetAmount*int64(p), 100)
		d.Milestones[i] = Milestone{
			Percent: p,
			Amount:  amount,
			Reached: goal.TargetAmount > 0 && goal.CurrentAmount >= amount,
		}
	}

	if goal.IsCompleted || goal.TargetDate == nil {
		return d
	}

	target := DateOf(*goal.TargetDate)
	if target.Before(today) {
		d.IsOverdue = true
		return d
	}

	months := MonthsBetween(today, target)
	d.MonthsRemaining = &months
	if months >= 1 && d.Remaining > 0 {
		required := money.Divide(d.Remaining, int64(months))
		d.MonthlyRequired = &required
	}
	return d
}
