// Package application models refinance applications: the borrower's request
// plus point-in-time snapshots of the products applied for, persisted in an
// embedded store. Snapshots are deliberate; catalog rates change, and the
// application must keep the terms the borrower actually saw.
package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kathai/refinance-engine/internal/catalog"
)

// Application statuses. Transitions only move forward through review or out
// to a terminal state; see AllowedTransitions.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
)

// AllowedTransitions maps each status to the statuses it may move to.
var AllowedTransitions = map[string][]string{
	StatusDraft:       {StatusSubmitted, StatusCancelled},
	StatusSubmitted:   {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCancelled},
}

// ProductSnapshot captures the product terms at application time.
type ProductSnapshot struct {
	ProductID            int64           `json:"productId"`
	ProductName          string          `json:"productName"`
	InterestRate         decimal.Decimal `json:"interestRate"`
	MaxLTV               int             `json:"maxLtv"`
	MaxTermYears         int             `json:"maxTermYears"`
	ProcessingFeePercent decimal.Decimal `json:"processingFeePercent"`
	AppraisalFee         decimal.Decimal `json:"appraisalFee"`
}

// BankSubmission is one bank's slice of an application: the snapshot of the
// product applied for plus the bank's contact details for follow-up.
type BankSubmission struct {
	BankID   int64           `json:"bankId"`
	BankName string          `json:"bankName"`
	Contact  catalog.Contact `json:"contact"`
	Product  ProductSnapshot `json:"product"`
	Status   string          `json:"status"`
}

// Application is one borrower's refinance application across one or more banks.
type Application struct {
	ID     string `json:"id"`
	Number string `json:"number"` // YYYYMM + 4-digit sequence
	UserID string `json:"userId"`
	Status string `json:"status"`

	Principal        decimal.Decimal `json:"principal"`
	PropertyValue    decimal.Decimal `json:"propertyValue"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	DesiredTermYears int             `json:"desiredTermYears"`

	Submissions []BankSubmission `json:"submissions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is what a caller supplies to open an application.
type Input struct {
	UserID           string
	Principal        decimal.Decimal
	PropertyValue    decimal.Decimal
	MonthlyIncome    decimal.Decimal
	DesiredTermYears int
	ProductIDs       []int64
}

// Build assembles a draft application from catalog state. Each requested
// product becomes a bank submission carrying a snapshot of the product's
// current terms; at most one submission per bank survives, first product
// listed wins.
func Build(cat *catalog.Catalog, in Input, now time.Time) (*Application, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}
	if !in.Principal.IsPositive() {
		return nil, fmt.Errorf("principal must be positive")
	}
	if len(in.ProductIDs) == 0 {
		return nil, fmt.Errorf("at least one product is required")
	}

	productByID := make(map[int64]catalog.LoanProduct, len(cat.Products))
	for _, p := range cat.Products {
		productByID[p.ID] = p
	}

	app := &Application{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		Status:           StatusDraft,
		Principal:        in.Principal,
		PropertyValue:    in.PropertyValue,
		MonthlyIncome:    in.MonthlyIncome,
		DesiredTermYears: in.DesiredTermYears,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}

	seenBanks := make(map[int64]struct{}, len(in.ProductIDs))
	for _, productID := range in.ProductIDs {
		product, ok := productByID[productID]
		if !ok {
			return nil, fmt.Errorf("unknown product %d", productID)
		}
		if !product.Active {
			return nil, fmt.Errorf("product %d is not available", productID)
		}
		bank, ok := cat.BankByID(product.BankID)
		if !ok {
			return nil, fmt.Errorf("product %d references unknown bank %d", productID, product.BankID)
		}
		if _, dup := seenBanks[bank.ID]; dup {
			continue
		}
		seenBanks[bank.ID] = struct{}{}

		app.Submissions = append(app.Submissions, BankSubmission{
			BankID:   bank.ID,
			BankName: bank.Name,
			Contact:  bank.Contact,
			Product: ProductSnapshot{
				ProductID:            product.ID,
				ProductName:          product.Name,
				InterestRate:         product.InterestRate,
				MaxLTV:               product.MaxLTV,
				MaxTermYears:         product.MaxTermYears,
				ProcessingFeePercent: product.ProcessingFeePercent,
				AppraisalFee:         product.AppraisalFee,
			},
			Status: StatusSubmitted,
		})
	}

	return app, nil
}

// CanTransition reports whether an application may move from one status to
// another. Terminal statuses have no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, allowed := range AllowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// FormatNumber builds the human-facing application number: the year and month
// of creation followed by a zero-padded sequence within that month.
func FormatNumber(createdAt time.Time, sequence uint64) string {
	return fmt.Sprintf("%s%04d", createdAt.UTC().Format("200601"), sequence)
}
