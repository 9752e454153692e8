package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Request is one borrower's comparison input, gathered by the surrounding
// application and handed to the engine pre-assembled. Amounts are monthly
// currency units except Principal and PropertyValue.
type Request struct {
	// Principal is the current loan balance to refinance.
	Principal decimal.Decimal `json:"principal"`

	// PropertyValue is used for the loan-to-value computation. Zero disables
	// the LTV eligibility axis.
	PropertyValue decimal.Decimal `json:"propertyValue"`

	// MonthlyIncome is the borrower's gross monthly income.
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`

	// DesiredTermYears is the remaining term the borrower wants.
	DesiredTermYears int `json:"desiredTermYears"`

	// BaselinePayment is the borrower's current monthly payment, used for
	// savings computation. When absent or non-positive the engine defaults it
	// to the highest computed payment among the result rows.
	BaselinePayment decimal.Decimal `json:"baselinePayment"`

	// ReferenceRate is the current market reference rate (e.g. MRR) used for
	// the display-only spread figure. Supplied by configuration rather than
	// hard-coded so it can vary without code changes.
	ReferenceRate decimal.Decimal `json:"referenceRate"`

	// AsOf is the date promotions are evaluated against. Zero means now.
	AsOf time.Time `json:"asOf"`
}

// Validate rejects requests the engine must not run on. These are
// request-level failures surfaced to the caller, distinct from the per-row
// failures the engine absorbs during a comparison.
func (r Request) Validate() error {
	if !r.Principal.IsPositive() {
		return fmt.Errorf("principal must be positive, got %s", r.Principal)
	}
	if !r.MonthlyIncome.IsPositive() {
		return fmt.Errorf("monthly income must be positive, got %s", r.MonthlyIncome)
	}
	if r.DesiredTermYears <= 0 {
		return fmt.Errorf("desired term must be positive, got %d years", r.DesiredTermYears)
	}
	if r.PropertyValue.IsNegative() {
		return fmt.Errorf("property value must not be negative, got %s", r.PropertyValue)
	}
	return nil
}

// EffectiveAsOf returns the promotion evaluation date, defaulting to now.
func (r Request) EffectiveAsOf() time.Time {
	if r.AsOf.IsZero() {
		return time.Now()
	}
	return r.AsOf
}
