package engine

import (
	"time"

	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// RateSet holds the resolved annual rates for a product after promotion
// application. All three rates equal the product's regular rate when no
// qualifying promotion applies.
type RateSet struct {
	FirstYear           decimal.Decimal `json:"firstYear"`
	SecondYear          decimal.Decimal `json:"secondYear"`
	Regular             decimal.Decimal `json:"regular"`
	SpecialPeriodMonths int             `json:"specialPeriodMonths,omitempty"`
}

// AverageThreeYear is the arithmetic mean of the first-year, second-year,
// and regular rates, rounded to two decimals half-up. This is the blended
// figure reported to the borrower.
func (rs RateSet) AverageThreeYear() decimal.Decimal {
	return money.Mean(rs.FirstYear, rs.SecondYear, rs.Regular)
}

// SelectPromotion picks the promotion applied to a comparison row: the
// highest-priority promotion that is valid on asOf and whose amount bounds
// contain the principal. Equal priority is resolved by lowest promotion ID,
// which keeps selection deterministic regardless of catalog ordering.
func SelectPromotion(promotions []*catalog.Promotion, principal decimal.Decimal, asOf time.Time) *catalog.Promotion {
	var best *catalog.Promotion
	for _, p := range promotions {
		if !p.ValidOn(asOf) || !p.MatchesAmount(principal) {
			continue
		}
		if best == nil ||
			p.Priority > best.Priority ||
			(p.Priority == best.Priority && p.ID < best.ID) {
			best = p
		}
	}
	return best
}

// ResolveRates derives the effective rate schedule for a product. A
// qualifying promotion with a special rate replaces the first-year rate, and
// also the second-year rate when its special period exceeds twelve months.
// Promotions without a special rate (fee waivers, cashback) leave the rate
// schedule untouched.
func ResolveRates(product catalog.LoanProduct, promo *catalog.Promotion) RateSet {
	regular := product.InterestRate

	if promo == nil || !promo.HasSpecialRate() {
		return RateSet{FirstYear: regular, SecondYear: regular, Regular: regular}
	}

	period := promo.SpecialRatePeriod
	if period <= 0 {
		period = constants.DefaultSpecialRatePeriodMonths
	}

	rs := RateSet{
		FirstYear:           promo.SpecialRate,
		SecondYear:          regular,
		Regular:             regular,
		SpecialPeriodMonths: period,
	}
	if period > constants.DefaultSpecialRatePeriodMonths {
		rs.SecondYear = promo.SpecialRate
	}
	return rs
}
