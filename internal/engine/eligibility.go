package engine

import (
	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// LoanToValue computes principal / propertyValue as a percentage, rounded to
// two decimals. A zero or negative property value yields zero, which
// effectively disables the LTV axis of eligibility filtering.
func LoanToValue(principal, propertyValue decimal.Decimal) decimal.Decimal {
	return money.Ratio(principal, propertyValue)
}

// FilterEligible selects the products a borrower qualifies for. All bounds
// are inclusive: a product whose maxLoanAmount equals the principal is
// eligible. An empty result is a valid outcome, not an error.
func FilterEligible(products []catalog.LoanProduct, req Request, loanToValue decimal.Decimal) []catalog.LoanProduct {
	eligible := make([]catalog.LoanProduct, 0, len(products))
	for _, p := range products {
		if req.Principal.LessThan(p.MinLoanAmount) || req.Principal.GreaterThan(p.MaxLoanAmount) {
			continue
		}
		if loanToValue.GreaterThan(decimal.NewFromInt(int64(p.MaxLTV))) {
			continue
		}
		if req.MonthlyIncome.LessThan(p.MinIncome) {
			continue
		}
		if p.MaxTermYears < req.DesiredTermYears {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}
