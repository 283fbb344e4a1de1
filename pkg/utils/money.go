package utils

import "github.com/shopspring/decimal"

// ToCents converts a major-unit amount to minor units. It reports false when
// the amount has more than two decimal places.
func ToCents(amount decimal.Decimal) (int64, bool) {
	shifted := amount.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, false
	}
	return shifted.IntPart(), true
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
