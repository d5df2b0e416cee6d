package utils

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the local business tax rate in percent.
var DefaultTaxRate = decimal.NewFromInt(5)

// RoundCurrency rounds an amount half-up to a whole currency unit
// (local fiscal amounts are whole numbers).
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// CalculateTax computes the business tax on an amount at the default 5%
// rate, rounded to a whole currency unit.
func CalculateTax(amount decimal.Decimal) decimal.Decimal {
	return CalculateTaxWithRate(amount, DefaultTaxRate)
}

func CalculateTaxWithRate(amount decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	taxAmount := amount.Mul(ratePercent).Div(decimal.NewFromInt(100))
	return RoundCurrency(taxAmount)
}

// CalculateDiscountAmount resolves a discount expressed either as a
// percentage ("PERCENTAGE") or a flat amount ("FIXED") against a subtotal.
func CalculateDiscountAmount(subTotal decimal.Decimal, discountValue decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	decimalOneHundred := decimal.NewFromInt(100)

	if discountValue.GreaterThan(decimal.Zero) {
		if discountType == "PERCENTAGE" {
			discountAmount = subTotal.Mul(discountValue).DivRound(decimalOneHundred, 4)
		} else {
			discountAmount = discountValue
		}
	} else {
		discountAmount = decimal.Zero
	}

	return discountAmount
}
