// Package output provides utilities for formatting and displaying comparison results.
package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kathai/refinance-engine/internal/engine"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *engine.Result) {
	fmt.Print(PrettyString(result))
}

// PrettyString renders the comparison as a human-readable table.
func PrettyString(result *engine.Result) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("--- Comparison results (%d eligible, showing %d) ---\n",
		result.TotalEligible, len(result.Rows)))
	if result.LoanToValue.IsPositive() {
		b.WriteString(fmt.Sprintf("Loan-to-value: %s%%\n", result.LoanToValue))
	}
	if result.DebtServiceRatio.IsPositive() {
		b.WriteString(fmt.Sprintf("Debt service ratio at best offer: %s%%\n", result.DebtServiceRatio))
	}
	b.WriteString("Rank | Bank | Product | Avg 3yr rate | Monthly payment | Total fees | Savings | Promotion\n")
	b.WriteString("____ | ____ | _______ | ____________ | _______________ | __________ | _______ | _________\n")

	for i, row := range result.Rows {
		promotion := ""
		if row.Promotion != nil {
			promotion = fmt.Sprintf("%s (until %s)", row.Promotion.Title, row.Promotion.Expiry)
		}
		payment, _ := row.MonthlyPayment.Float64()
		fees, _ := row.Fees.TotalFees.Float64()
		savings, _ := row.SavingsAmount.Float64()
		b.WriteString(p.Sprintf("%d | %s | %s | %s%% | %.2f | %.2f | %.2f | %s\n",
			i+1, row.BankName, row.ProductName, row.AverageThreeYearRate,
			payment, fees, savings, promotion))
	}

	for _, rowErr := range result.RowErrors {
		b.WriteString(fmt.Sprintf("skipped %s: %s\n", rowErr.ProductName, rowErr.Reason))
	}

	return b.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *engine.Result) {
	fmt.Print(CsvString(result))
}

// CsvString renders the comparison rows as CSV.
func CsvString(result *engine.Result) string {
	var b strings.Builder

	b.WriteString(`"rank","bank","product","rateType","firstYearRate","secondYearRate","regularRate","avg3YearRate","termMonths","monthlyPayment","totalPayment","totalInterest","totalFees","savings","promotion"`)
	b.WriteString("\n")

	for i, row := range result.Rows {
		promotion := ""
		if row.Promotion != nil {
			promotion = row.Promotion.Title
		}
		b.WriteString(fmt.Sprintf(`"%d","%s","%s","%s","%s","%s","%s","%s","%d","%s","%s","%s","%s","%s","%s"`,
			i+1, row.BankName, row.ProductName, row.RateType,
			row.Rates.FirstYear.StringFixed(2), row.Rates.SecondYear.StringFixed(2),
			row.Rates.Regular.StringFixed(2), row.AverageThreeYearRate.StringFixed(2),
			row.TermMonths,
			row.MonthlyPayment.StringFixed(2), row.TotalPayment.StringFixed(2),
			row.TotalInterest.StringFixed(2), row.Fees.TotalFees.StringFixed(2),
			row.SavingsAmount.StringFixed(2), promotion))
		b.WriteString("\n")
	}

	return b.String()
}
