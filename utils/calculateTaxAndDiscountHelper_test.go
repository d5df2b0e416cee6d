package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateTaxRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"100", "5"},
		{"105", "5"}, // 5.25 rounds down
		{"110", "6"}, // 5.50 rounds up
		{"111", "6"}, // 5.55 rounds up
		{"90", "5"},  // 4.50 rounds up
		{"89", "4"},   // 4.45 rounds down
		{"0", "0"},
		{"1", "0"},  // 0.05 rounds down
		{"10", "1"}, // 0.50 rounds up
	}
	for _, c := range cases {
		got := CalculateTax(decimal.RequireFromString(c.amount))
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("CalculateTax(%s) = %s, want %s", c.amount, got.String(), c.want)
		}
	}
}

func TestCalculateDiscountAmount(t *testing.T) {
	subTotal := decimal.NewFromInt(1000)

	got := CalculateDiscountAmount(subTotal, decimal.NewFromInt(10), "PERCENTAGE")
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percentage discount = %s, want 100", got.String())
	}

	got = CalculateDiscountAmount(subTotal, decimal.NewFromInt(150), "FIXED")
	if !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("fixed discount = %s, want 150", got.String())
	}

	got = CalculateDiscountAmount(subTotal, decimal.Zero, "PERCENTAGE")
	if !got.Equal(decimal.Zero) {
		t.Errorf("zero discount value should give zero, got %s", got.String())
	}
}

func TestRoundCurrency(t *testing.T) {
	if got := RoundCurrency(decimal.RequireFromString("10.5")); !got.Equal(decimal.NewFromInt(11)) {
		t.Errorf("RoundCurrency(10.5) = %s, want 11", got.String())
	}
	if got := RoundCurrency(decimal.RequireFromString("10.49")); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("RoundCurrency(10.49) = %s, want 10", got.String())
	}
}
