// Package money converts between integer cents and decimal representations.
// Amounts are signed: expenses are negative, income is positive.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"MYR": "RM",
}

// ToDecimal returns the cents value as a decimal currency amount.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FromDecimal rounds d to cents (half away from zero).
func FromDecimal(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// String renders cents as a plain decimal string with two places, e.g. "-12.50".
func String(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}

// Parse reads a human-entered amount into cents. It accepts thousands
// separators, a leading currency symbol, and accounting-style parentheses
// for negatives: "1,234.56", "$-5", "(12.00)".
func Parse(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = strings.TrimSpace(raw[1 : len(raw)-1])
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			return r
		case r == ',' || r == ' ':
			return -1
		}
		for _, sym := range symbols {
			if strings.ContainsRune(sym, r) {
				return -1
			}
		}
		return r
	}, raw)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	cents := d.Round(2).Shift(2)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return cents.IntPart(), nil
}

// Format renders cents with a currency symbol and thousands grouping,
// e.g. Format(-123456, "USD") == "-$1,234.56". Unknown currencies are
// prefixed with their ISO code.
func Format(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	fixed := ToDecimal(Abs(cents)).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	symbol, ok := symbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}
	return sign + symbol + group(whole) + "." + frac
}

// FormatUSD is Format with the USD symbol.
func FormatUSD(cents int64) string {
	return Format(cents, "USD")
}

// Abs returns the magnitude of an amount.
func Abs(cents int64) int64 {
	if cents < 0 {
		return -cents
	}
	return cents
}

// Signed applies the expense/income sign convention to a magnitude.
func Signed(magnitude int64, expense bool) int64 {
	magnitude = Abs(magnitude)
	if expense {
		return -magnitude
	}
	return magnitude
}

// Divide splits cents into n equal parts rounded to the nearest cent.
func Divide(cents int64, n int64) int64 {
	if n == 0 {
		return 0
	}
	return FromDecimal(ToDecimal(cents).Div(decimal.NewFromInt(n)))
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
