// Package engine implements the loan-comparison and affordability
// calculation pipeline: eligibility filtering, promotional-rate resolution,
// amortization, fee aggregation, and ranking. The engine is stateless; every
// call operates on the catalog snapshot and request it is handed and returns
// freshly built result rows.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PromotionSummary is the display metadata for an applied promotion.
type PromotionSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Terms   string `json:"terms,omitempty"`
	Expiry  string `json:"expiry"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}

// Row is one ranked comparison result for a single product.
type Row struct {
	ProductID   int64  `json:"productId"`
	BankID      int64  `json:"bankId"`
	BankName    string `json:"bankName"`
	ProductName string `json:"productName"`
	RateType    string `json:"rateType"`

	Rates                RateSet         `json:"rates"`
	AverageThreeYearRate decimal.Decimal `json:"averageThreeYearRate"`

	TermMonths        int             `json:"termMonths"`
	MonthlyPayment    decimal.Decimal `json:"monthlyPayment"`
	FirstYearPayment  decimal.Decimal `json:"firstYearPayment"`
	SecondYearPayment decimal.Decimal `json:"secondYearPayment"`
	TotalPayment      decimal.Decimal `json:"totalPayment"`
	TotalInterest     decimal.Decimal `json:"totalInterest"`

	Fees FeeBreakdown `json:"fees"`

	Promotion *PromotionSummary `json:"promotion,omitempty"`

	// ReferenceSpread is the regular rate minus the market reference rate,
	// display-only. Zero when no reference rate was supplied.
	ReferenceSpread decimal.Decimal `json:"referenceSpread"`

	SavingsAmount decimal.Decimal `json:"savingsAmount"`
}

// RowError records a product that was dropped from the result set because
// its own calculation failed. Failures are isolated per row; they never
// abort the batch.
type RowError struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
}

// Result is the outcome of one comparison. An empty Rows slice is a valid
// "nothing to show" state, whether because no products were eligible or
// because every eligible product failed its own calculation.
type Result struct {
	Rows      []Row      `json:"rows"`
	RowErrors []RowError `json:"rowErrors,omitempty"`

	// TotalEligible counts every eligible product that produced a row,
	// independent of the truncated display list.
	TotalEligible int `json:"totalEligible"`

	LoanToValue      decimal.Decimal `json:"loanToValue"`
	DebtServiceRatio decimal.Decimal `json:"debtServiceRatio"`
	BaselinePayment  decimal.Decimal `json:"baselinePayment"`
}

// Engine runs comparisons. It holds no state between invocations beyond its
// logger; concurrent calls are safe as long as the shared catalog snapshot
// is not mutated, which the catalog contract guarantees.
type Engine struct {
	logger *zap.Logger
}

// New constructs an Engine. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Compare runs the full pipeline for one request against a catalog snapshot:
// eligibility filter, per-product row construction, baseline and savings
// computation, ranking, and truncation. Only request-level validation
// failures are returned as errors; per-product failures are collected into
// Result.RowErrors and logged.
func (e *Engine) Compare(cat *catalog.Catalog, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	asOf := req.EffectiveAsOf()
	ltv := LoanToValue(req.Principal, req.PropertyValue)
	eligible := FilterEligible(cat.ActiveRefinanceProducts(), req, ltv)

	result := &Result{
		Rows:        make([]Row, 0, len(eligible)),
		LoanToValue: ltv,
	}

	for _, product := range eligible {
		row, err := e.buildRow(cat, product, req, asOf)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Reason:      err.Error(),
			})
			e.logger.Warn("dropping comparison row",
				zap.String("op", "engine.Compare"),
				zap.Int64("productId", product.ID),
				zap.String("product", product.Name),
				zap.Error(err),
			)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	result.TotalEligible = len(result.Rows)
	if len(result.Rows) == 0 {
		return result, nil
	}

	// Baseline defaults to the highest computed payment so savings are
	// always non-negative and at least one row reports zero savings.
	baseline := req.BaselinePayment
	if !baseline.IsPositive() {
		baseline = result.Rows[0].MonthlyPayment
		for _, row := range result.Rows[1:] {
			baseline = money.Max(baseline, row.MonthlyPayment)
		}
	}
	result.BaselinePayment = baseline

	for i := range result.Rows {
		row := &result.Rows[i]
		monthlySaving := baseline.Sub(row.MonthlyPayment)
		if monthlySaving.IsNegative() {
			monthlySaving = decimal.Zero
		}
		row.SavingsAmount = money.Round(monthlySaving.Mul(decimal.NewFromInt(int64(row.TermMonths))))
	}

	// Lowest payment first; ties keep their input order.
	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].MonthlyPayment.LessThan(result.Rows[j].MonthlyPayment)
	})
	if len(result.Rows) > constants.MaxComparisonRows {
		result.Rows = result.Rows[:constants.MaxComparisonRows]
	}

	result.DebtServiceRatio = money.Ratio(result.Rows[0].MonthlyPayment, req.MonthlyIncome)

	e.logger.Debug("comparison computed",
		zap.String("op", "engine.Compare"),
		zap.Int("eligible", result.TotalEligible),
		zap.Int("rows", len(result.Rows)),
		zap.Int("rowErrors", len(result.RowErrors)),
	)

	return result, nil
}

// buildRow assembles one comparison row. Any error here drops only this row.
func (e *Engine) buildRow(cat *catalog.Catalog, product catalog.LoanProduct, req Request, asOf time.Time) (Row, error) {
	bank, ok := cat.BankByID(product.BankID)
	if !ok {
		return Row{}, fmt.Errorf("product references unknown bank %d", product.BankID)
	}

	termYears := req.DesiredTermYears
	if product.MaxTermYears < termYears {
		termYears = product.MaxTermYears
	}
	termMonths := termYears * constants.MonthsPerYear
	if termMonths <= 0 {
		return Row{}, fmt.Errorf("product yields non-positive term %d months", termMonths)
	}

	promo := SelectPromotion(cat.PromotionsForBank(product.BankID), req.Principal, asOf)
	rates := ResolveRates(product, promo)

	monthly := MonthlyPayment(req.Principal, rates.Regular, termMonths)
	row := Row{
		ProductID:            product.ID,
		BankID:               bank.ID,
		BankName:             bank.Name,
		ProductName:          product.Name,
		RateType:             product.RateType,
		Rates:                rates,
		AverageThreeYearRate: rates.AverageThreeYear(),
		TermMonths:           termMonths,
		MonthlyPayment:       monthly,
		FirstYearPayment:     MonthlyPayment(req.Principal, rates.FirstYear, termMonths),
		SecondYearPayment:    MonthlyPayment(req.Principal, rates.SecondYear, termMonths),
		TotalPayment:         TotalPayment(monthly, termMonths),
		TotalInterest:        TotalInterest(monthly, termMonths, req.Principal),
		Fees:                 AggregateFees(product, cat.FeesForBank(product.BankID), cat, req.Principal),
	}

	if promo != nil {
		row.Promotion = &PromotionSummary{
			ID:      promo.ID,
			Title:   promo.Title,
			Terms:   promo.Terms,
			Expiry:  promo.EndDate,
			Type:    promo.PromotionType,
			Details: promo.Description,
		}
	}

	if req.ReferenceRate.IsPositive() {
		row.ReferenceSpread = rates.Regular.Sub(req.ReferenceRate)
	}

	return row, nil
}
