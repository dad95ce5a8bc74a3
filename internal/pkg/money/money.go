package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount to the smallest currency unit, rounding half away from zero
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinor converts smallest-unit amounts back to major units
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
