package engine

import (
	"fmt"

	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// FeeBreakdown itemizes the closing costs for one comparison row. All
// amounts are rounded to two decimals; OtherFees accumulates with running
// two-decimal rounding at each addition. Skipped records the fee rows that
// could not be computed; a partial breakdown is always produced.
type FeeBreakdown struct {
	ProcessingFee decimal.Decimal `json:"processingFee"`
	AppraisalFee  decimal.Decimal `json:"appraisalFee"`
	LegalFee      decimal.Decimal `json:"legalFee"`
	OtherFees     decimal.Decimal `json:"otherFees"`
	TotalFees     decimal.Decimal `json:"totalFees"`
	Skipped       []string        `json:"skipped,omitempty"`
}

// feeTypeResolver is the piece of the catalog the aggregator needs; the
// catalog satisfies it.
type feeTypeResolver interface {
	FeeTypeByCode(code string) (*catalog.FeeType, bool)
}

// AggregateFees computes the total closing costs for one product. The
// processing fee (percent of principal) and appraisal fee (fixed) come from
// the product itself; the legal fee and all remaining fees come from the
// bank's fee schedule, each computed per its fee type's percentage-or-fixed
// kind. A fee row whose type cannot be resolved is skipped and noted rather
// than aborting the aggregation.
func AggregateFees(product catalog.LoanProduct, bankFees []*catalog.Fee, resolver feeTypeResolver, principal decimal.Decimal) FeeBreakdown {
	breakdown := FeeBreakdown{
		ProcessingFee: decimal.Zero,
		AppraisalFee:  money.Round(product.AppraisalFee),
		LegalFee:      decimal.Zero,
		OtherFees:     decimal.Zero,
	}

	if product.ProcessingFeePercent.IsPositive() {
		breakdown.ProcessingFee = money.PercentOf(principal, product.ProcessingFeePercent)
	}

	for _, fee := range bankFees {
		if !fee.Active {
			continue
		}
		switch fee.FeeType {
		case constants.FeeCodeProcessing, constants.FeeCodeAppraisal:
			// Sourced from the product, not the generic fee table.
			continue
		}

		feeType, ok := resolver.FeeTypeByCode(fee.FeeType)
		if !ok || !feeType.Active {
			breakdown.Skipped = append(breakdown.Skipped,
				fmt.Sprintf("fee %q for bank %d has no active fee type", fee.FeeType, fee.BankID))
			continue
		}

		amount, err := feeAmount(feeType, fee, principal)
		if err != nil {
			breakdown.Skipped = append(breakdown.Skipped, err.Error())
			continue
		}

		if fee.FeeType == constants.FeeCodeLegal {
			breakdown.LegalFee = amount
		} else {
			breakdown.OtherFees = money.Round(breakdown.OtherFees.Add(amount))
		}
	}

	breakdown.TotalFees = breakdown.ProcessingFee.
		Add(breakdown.AppraisalFee).
		Add(breakdown.LegalFee).
		Add(breakdown.OtherFees)
	return breakdown
}

func feeAmount(feeType *catalog.FeeType, fee *catalog.Fee, principal decimal.Decimal) (decimal.Decimal, error) {
	switch feeType.Kind {
	case constants.FeeKindPercentage:
		return money.PercentOf(principal, fee.Amount), nil
	case constants.FeeKindFixed:
		return money.Round(fee.Amount), nil
	default:
		return decimal.Zero, fmt.Errorf("fee %q for bank %d has unknown kind %q",
			fee.FeeType, fee.BankID, feeType.Kind)
	}
}
