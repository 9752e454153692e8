package engine

import (
	"testing"

	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/shopspring/decimal"
)

func refinanceProduct(id int64) catalog.LoanProduct {
	return catalog.LoanProduct{
		ID:            id,
		BankID:        1,
		Name:          "Refi Standard",
		ProductType:   "refinance",
		InterestRate:  decimal.RequireFromString("3.25"),
		MinLoanAmount: decimal.RequireFromString("500000"),
		MaxLoanAmount: decimal.RequireFromString("5000000"),
		MaxLTV:        90,
		MaxTermYears:  30,
		MinIncome:     decimal.RequireFromString("15000"),
		Active:        true,
	}
}

func TestLoanToValue(t *testing.T) {
	tests := []struct {
		name          string
		principal     string
		propertyValue string
		expected      string
	}{
		{"80 percent", "2000000", "2500000", "80.00"},
		{"Zero property value disables axis", "2000000", "0", "0"},
		{"Over 100 percent", "3000000", "2500000", "120.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LoanToValue(dec(tt.principal), dec(tt.propertyValue))
			if !result.Equal(dec(tt.expected)) {
				t.Errorf("LoanToValue(%s, %s) = %s, expected %s",
					tt.principal, tt.propertyValue, result, tt.expected)
			}
		})
	}
}

func TestFilterEligibleAmountBoundary(t *testing.T) {
	product := refinanceProduct(1)
	req := Request{
		MonthlyIncome:    dec("50000"),
		DesiredTermYears: 20,
	}

	// Principal exactly at max is included (inclusive bound).
	req.Principal = dec("5000000")
	if got := FilterEligible([]catalog.LoanProduct{product}, req, decimal.Zero); len(got) != 1 {
		t.Fatalf("principal at maxLoanAmount should be eligible, got %d products", len(got))
	}

	// One unit above max is excluded.
	req.Principal = dec("5000001")
	if got := FilterEligible([]catalog.LoanProduct{product}, req, decimal.Zero); len(got) != 0 {
		t.Fatalf("principal above maxLoanAmount should be excluded, got %d products", len(got))
	}

	// Exactly at min is included.
	req.Principal = dec("500000")
	if got := FilterEligible([]catalog.LoanProduct{product}, req, decimal.Zero); len(got) != 1 {
		t.Fatalf("principal at minLoanAmount should be eligible, got %d products", len(got))
	}
}

func TestFilterEligibleAxes(t *testing.T) {
	product := refinanceProduct(1)
	base := Request{
		Principal:        dec("2000000"),
		MonthlyIncome:    dec("50000"),
		DesiredTermYears: 20,
	}

	tests := []struct {
		name     string
		mutate   func(*Request)
		ltv      string
		eligible bool
	}{
		{"Baseline eligible", func(r *Request) {}, "80", true},
		{"LTV above product max", func(r *Request) {}, "95", false},
		{"LTV at product max", func(r *Request) {}, "90", true},
		{"Zero LTV passes", func(r *Request) {}, "0", true},
		{"Income below minimum", func(r *Request) { r.MonthlyIncome = dec("14999") }, "80", false},
		{"Income at minimum", func(r *Request) { r.MonthlyIncome = dec("15000") }, "80", true},
		{"Term beyond product max", func(r *Request) { r.DesiredTermYears = 31 }, "80", false},
		{"Term at product max", func(r *Request) { r.DesiredTermYears = 30 }, "80", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			got := FilterEligible([]catalog.LoanProduct{product}, req, dec(tt.ltv))
			if (len(got) == 1) != tt.eligible {
				t.Errorf("eligible = %v, expected %v", len(got) == 1, tt.eligible)
			}
		})
	}
}

func TestFilterEligibleEmptyResult(t *testing.T) {
	req := Request{
		Principal:        dec("100"),
		MonthlyIncome:    dec("50000"),
		DesiredTermYears: 20,
	}
	got := FilterEligible([]catalog.LoanProduct{refinanceProduct(1)}, req, decimal.Zero)
	if got == nil {
		t.Fatal("empty result should be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no eligible products, got %d", len(got))
	}
}
