package money

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"-12.5", -1250, false},
		{"1,234.56", 123456, false},
		{"$99", 9900, false},
		{"$-5.00", -500, false},
		{"(12.00)", -1200, false},
		{"0.005", 1, false},
		{"+7", 700, false},
		{"", 0, true},
		{"abc", 0, true},
		{"92233720368547758.07", 9223372036854775807, false},
		{"92233720368547758.08", 0, true},
		{"999999999999999999999", 0, true},
		{"-999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{0, "USD", "$0.00"},
		{5, "USD", "$0.05"},
		{123456, "USD", "$1,234.56"},
		{-123456, "usd", "-$1,234.56"},
		{100000000, "EUR", "€1,000,000.00"},
		{-1200, "CHF", "-CHF 12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.cents, tt.currency); got != tt.want {
				t.Errorf("Format(%d, %s) = %q, want %q", tt.cents, tt.currency, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := String(-1250); got != "-12.50" {
		t.Errorf("String(-1250) = %q", got)
	}
	if got := String(7); got != "0.07" {
		t.Errorf("String(7) = %q", got)
	}
}

func TestSignedAndAbs(t *testing.T) {
	if Signed(500, true) != -500 || Signed(-500, true) != -500 {
		t.Error("expense amounts must be negative")
	}
	if Signed(-500, false) != 500 {
		t.Error("income amounts must be positive")
	}
	if Abs(-3) != 3 || Abs(3) != 3 {
		t.Error("Abs returned wrong magnitude")
	}
}

func TestDivide(t *testing.T) {
	if got := Divide(10000, 3); got != 3333 {
		t.Errorf("Divide(10000, 3) = %d, want 3333", got)
	}
	if got := Divide(200, 3); got != 67 {
		t.Errorf("Divide(200, 3) = %d, want 67", got)
	}
	if got := Divide(100, 0); got != 0 {
		t.Errorf("Divide by zero = %d, want 0", got)
	}
}
