// Package money keeps monetary arithmetic in decimals and only converts to
// float64 at the JSON boundary.
package money

import "github.com/shopspring/decimal"

// Scale is the number of fractional digits kept for amounts.
const Scale = 2

// FromFloat converts a stored amount into a decimal.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Line returns price multiplied by quantity.
func Line(price float64, quantity int) decimal.Decimal {
	return FromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// Round rounds to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Float rounds and converts for JSON encoding.
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}

// Sum adds amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
