package catalog

import (
	"time"

	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

// Contact is the canonical contact structure carried by every bank. Exactly
// one field set; consumers must not probe alternative attribute names.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Bank represents a lending institution in the catalog.
type Bank struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	BankType     string  `json:"bankType"`
	Contact      Contact `json:"contact"`
	Active       bool    `json:"active"`
	DisplayOrder int     `json:"displayOrder"`
}

// LoanProduct represents one loan offering from a bank.
type LoanProduct struct {
	ID                   int64           `json:"id"`
	BankID               int64           `json:"bankId"`
	Name                 string          `json:"name"`
	ProductType          string          `json:"productType"`
	InterestRate         decimal.Decimal `json:"interestRate"` // annual percent
	RateType             string          `json:"rateType"`     // fixed, floating, mixed
	MinLoanAmount        decimal.Decimal `json:"minLoanAmount"`
	MaxLoanAmount        decimal.Decimal `json:"maxLoanAmount"`
	MaxLTV               int             `json:"maxLtv"` // percent, 1-100
	MaxTermYears         int             `json:"maxTermYears"`
	ProcessingFeePercent decimal.Decimal `json:"processingFeePercent"`
	AppraisalFee         decimal.Decimal `json:"appraisalFee"` // fixed currency amount
	MinIncome            decimal.Decimal `json:"minIncome"`    // monthly
	MinAge               int             `json:"minAge"`
	MaxAge               int             `json:"maxAge"`
	Active               bool            `json:"active"`
}

// Promotion is a time-boxed special offer attached to a bank. Amount bounds
// and the special rate are optional; zero means unset.
type Promotion struct {
	ID                int64           `json:"id"`
	BankID            int64           `json:"bankId"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Terms             string          `json:"terms"`
	PromotionType     string          `json:"promotionType"` // special_rate, fee_waiver, cashback, gift, other
	MinLoanAmount     decimal.Decimal `json:"minLoanAmount"`
	MaxLoanAmount     decimal.Decimal `json:"maxLoanAmount"`
	SpecialRate       decimal.Decimal `json:"specialRate"`       // annual percent
	SpecialRatePeriod int             `json:"specialRatePeriod"` // months
	StartDate         string          `json:"startDate"`         // YYYY-MM-DD
	EndDate           string          `json:"endDate"`           // YYYY-MM-DD, inclusive
	Active            bool            `json:"active"`
	Sponsored         bool            `json:"sponsored"`
	Priority          int             `json:"priority"` // higher wins

	start time.Time
	end   time.Time
}

// ParseDates converts the promotion's date strings into comparable times.
func (p *Promotion) ParseDates() error {
	start, err := time.Parse(constants.DateLayout, p.StartDate)
	if err != nil {
		return err
	}
	end, err := time.Parse(constants.DateLayout, p.EndDate)
	if err != nil {
		return err
	}
	p.start, p.end = start, end
	return nil
}

// ValidOn reports whether the promotion can be applied on the given date:
// active and startDate <= date <= endDate (inclusive on both ends). A
// promotion whose dates failed to parse is never valid.
func (p *Promotion) ValidOn(t time.Time) bool {
	if !p.Active || p.start.IsZero() || p.end.IsZero() {
		return false
	}
	day := DateOnly(t)
	return !day.Before(p.start) && !day.After(p.end)
}

// MatchesAmount reports whether the principal falls within the promotion's
// optional amount bounds. An unset (zero) bound does not constrain.
func (p *Promotion) MatchesAmount(principal decimal.Decimal) bool {
	if p.MinLoanAmount.IsPositive() && principal.LessThan(p.MinLoanAmount) {
		return false
	}
	if p.MaxLoanAmount.IsPositive() && principal.GreaterThan(p.MaxLoanAmount) {
		return false
	}
	return true
}

// HasSpecialRate reports whether this promotion carries a special first-period rate.
func (p *Promotion) HasSpecialRate() bool {
	return p.SpecialRate.IsPositive()
}

// FeeType classifies a fee as a percentage of principal or a fixed amount.
type FeeType struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Kind   string `json:"kind"` // percentage, fixed
	Active bool   `json:"active"`
}

// Fee is one bank's value for a fee type, referenced by fee-type code.
// At most one row per (bank, fee-type) pair survives catalog loading.
type Fee struct {
	BankID    int64           `json:"bankId"`
	FeeType   string          `json:"feeType"` // FeeType.Code
	Amount    decimal.Decimal `json:"amount"`
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
	Active    bool            `json:"active"`
}

// DateOnly truncates a time to its calendar date in UTC, matching the
// resolution of promotion validity windows.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
