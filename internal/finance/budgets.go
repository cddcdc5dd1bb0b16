package finance

import "math"

// BudgetStatus classifies spending against a budget.
type BudgetStatus string

const (
	BudgetStatusSafe    BudgetStatus = "safe"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusOver    BudgetStatus = "over"
)

// DefaultAlertThreshold is used when neither the budget nor config sets one.
const DefaultAlertThreshold = 90.0

// BudgetInput is the subset of a budget the calculator needs.
type BudgetInput struct {
	Amount         int64
	Rollover       bool
	AlertThreshold float64
}

// BudgetDetails are derived from a budget and the month's spending.
type BudgetDetails struct {
	Spent                   int64        `json:"spent"`
	Remaining               int64        `json:"remaining"`
	Percentage              float64      `json:"percentage"`
	EffectiveBudget         int64        `json:"effective_budget"`
	RolloverAmount          *int64       `json:"rollover_amount,omitempty"`
	EffectiveAlertThreshold float64      `json:"effective_alert_threshold"`
	Status                  BudgetStatus `json:"status"`
}

// CalculateBudgetDetails derives spent, remaining, percentage and status.
// rolloverAmount is added only when the budget carries rollover and the
// amount is positive. A zero threshold falls back to defaultThreshold.
func CalculateBudgetDetails(b BudgetInput, spent int64, rolloverAmount *int64, defaultThreshold float64) BudgetDetails {
	effective := b.Amount
	d := BudgetDetails{Spent: spent}
	if b.Rollover && rolloverAmount != nil && *rolloverAmount > 0 {
		effective += *rolloverAmount
		r := *rolloverAmount
		d.RolloverAmount = &r
	}
	d.EffectiveBudget = effective
	d.Remaining = effective - spent

	if effective > 0 {
		d.Percentage = round1(float64(spent) / float64(effective) * 100)
	}

	d.EffectiveAlertThreshold = b.AlertThreshold
	if d.EffectiveAlertThreshold <= 0 {
		d.EffectiveAlertThreshold = defaultThreshold
	}
	if d.EffectiveAlertThreshold <= 0 {
		d.EffectiveAlertThreshold = DefaultAlertThreshold
	}
	d.Status = GetBudgetStatus(d.Percentage, d.EffectiveAlertThreshold)
	return d
}

// GetBudgetStatus maps a spent percentage onto a status.
func GetBudgetStatus(percentage, alertThreshold float64) BudgetStatus {
	switch {
	case percentage >= 100:
		return BudgetStatusOver
	case percentage >= alertThreshold:
		return BudgetStatusWarning
	default:
		return BudgetStatusSafe
	}
}

// RolloverFrom is the unspent part of last month's nominal budget, never negative.
func RolloverFrom(amount, previousSpent int64) int64 {
	if left := amount - previousSpent; left > 0 {
		return left
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
