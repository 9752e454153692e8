// Package money provides currency arithmetic helpers on top of
// shopspring/decimal. All display-ready amounts are quantized to two decimal
// places with half-up rounding.
package money

import (
	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round quantizes a value to two decimals, i.e. to represent real currency.
// decimal.Round uses half-away-from-zero, which is half-up for the
// non-negative amounts this engine works with.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(constants.MoneyPlaces)
}

// FromFloat converts a float64 into a currency-rounded decimal.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// PercentOf returns percent% of amount, rounded to two decimals.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// Ratio returns value as a percentage of total, rounded to two decimals.
// A zero or negative total yields zero rather than a division error.
func Ratio(value, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return Round(value.Div(total).Mul(hundred))
}

// Mean returns the arithmetic mean of the given values rounded to two
// decimals. An empty argument list yields zero.
func Mean(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return Round(sum.Div(decimal.NewFromInt(int64(len(values)))))
}

// Max returns the larger of two values.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of two values.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
