package engine

import (
	"math"

	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// MonthlyPayment calculates the fixed monthly payment for a loan using the
// standard annuity formula. The annual rate is a percentage (3.25 means
// 3.25%). A zero rate degenerates to principal/months; a non-positive term
// yields zero rather than an error so a single malformed product cannot
// abort a batch. The result is rounded to two decimals half-up and is
// deterministic for identical inputs.
func MonthlyPayment(principal decimal.Decimal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}

	p, _ := principal.Float64()
	rate, _ := annualRate.Float64()
	periodicRate := rate / (constants.PercentageMultiplier * constants.MonthsPerYear)

	var payment float64
	if periodicRate > 0 {
		power := math.Pow(1.00+periodicRate, float64(months))
		payment = p * (periodicRate * power) / (power - 1.00)
	} else {
		payment = p / float64(months)
	}

	return money.FromFloat(payment)
}

// TotalPayment is the sum of all monthly payments over the term.
func TotalPayment(monthlyPayment decimal.Decimal, months int) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(months)))
}

// TotalInterest is the amount paid over the term beyond the principal.
func TotalInterest(monthlyPayment decimal.Decimal, months int, principal decimal.Decimal) decimal.Decimal {
	return TotalPayment(monthlyPayment, months).Sub(principal)
}
