package finance

import (
	"fmt"

	"pocketpilot/internal/money"
)

// SplitValidation is the outcome of reconciling split amounts with a parent.
type SplitValidation struct {
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Difference int64  `json:"difference"`
}

// ValidateSplitAmounts checks that the positive split magnitudes add up to
// the parent's magnitude exactly. Amounts are whole cents so no drift needs
// absorbing.
func ValidateSplitAmounts(parentAmount int64, splits []int64) SplitValidation {
	if len(splits) < 2 {
		return SplitValidation{Message: "At least two splits are required"}
	}
	var total int64
	for _, s := range splits {
		if s <= 0 {
			return SplitValidation{Message: "Split amounts must be positive"}
		}
		total += s
	}

	diff := money.Abs(parentAmount) - total
	switch {
	case diff > 0:
		return SplitValidation{Difference: diff, Message: fmt.Sprintf("Split amounts are missing %s", money.FormatUSD(diff))}
	case diff < 0:
		return SplitValidation{Difference: diff, Message: fmt.Sprintf("Split amounts exceed the transaction by %s", money.FormatUSD(-diff))}
	}
	return SplitValidation{Valid: true}
}

// SignLike gives magnitude the sign of parent, so expense splits stay negative.
func SignLike(parent, magnitude int64) int64 {
	return money.Signed(money.Abs(magnitude), parent < 0)
}
