package finance

import "testing"

func TestCalculateBudgetDetails(t *testing.T) {
	rollover := int64(5000)

	tests := []struct {
		name          string
		budget        BudgetInput
		spent         int64
		rollover      *int64
		wantEffective int64
		wantRemaining int64
		wantPct       float64
		wantStatus    BudgetStatus
	}{
		{"safe", BudgetInput{Amount: 50000}, 10000, nil, 50000, 40000, 20, BudgetStatusSafe},
		{"warning at threshold", BudgetInput{Amount: 10000}, 9000, nil, 10000, 1000, 90, BudgetStatusWarning},
		{"over", BudgetInput{Amount: 10000}, 12000, nil, 10000, -2000, 120, BudgetStatusOver},
		{"exactly spent", BudgetInput{Amount: 10000}, 10000, nil, 10000, 0, 100, BudgetStatusOver},
		{"rollover applied", BudgetInput{Amount: 10000, Rollover: true}, 9000, &rollover, 15000, 6000, 60, BudgetStatusSafe},
		{"rollover ignored when disabled", BudgetInput{Amount: 10000}, 9000, &rollover, 10000, 1000, 90, BudgetStatusWarning},
		{"custom threshold", BudgetInput{Amount: 10000, AlertThreshold: 50}, 5500, nil, 10000, 4500, 55, BudgetStatusWarning},
		{"rounds to one decimal", BudgetInput{Amount: 30000}, 10000, nil, 30000, 20000, 33.3, BudgetStatusSafe},
		{"zero budget", BudgetInput{Amount: 0}, 500, nil, 0, -500, 0, BudgetStatusSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CalculateBudgetDetails(tt.budget, tt.spent, tt.rollover, DefaultAlertThreshold)
			if d.EffectiveBudget != tt.wantEffective {
				t.Errorf("effective = %d, want %d", d.EffectiveBudget, tt.wantEffective)
			}
			if d.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", d.Remaining, tt.wantRemaining)
			}
			if d.Percentage != tt.wantPct {
				t.Errorf("percentage = %v, want %v", d.Percentage, tt.wantPct)
			}
			if d.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", d.Status, tt.wantStatus)
			}
		})
	}
}

func TestCalculateBudgetDetails_NegativeRolloverIgnored(t *testing.T) {
	negative := int64(-100)
	d := CalculateBudgetDetails(BudgetInput{Amount: 1000, Rollover: true}, 0, &negative, DefaultAlertThreshold)
	if d.EffectiveBudget != 1000 || d.RolloverAmount != nil {
		t.Errorf("expected negative rollover to be ignored, got %+v", d)
	}
}

func TestRolloverFrom(t *testing.T) {
	if got := RolloverFrom(10000, 4000); got != 6000 {
		t.Errorf("expected 6000, got %d", got)
	}
	if got := RolloverFrom(10000, 12000); got != 0 {
		t.Errorf("expected overspend to carry nothing, got %d", got)
	}
}
