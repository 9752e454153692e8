// Package catalog defines the read-only loan product catalog consumed by the
// comparison engine: banks, products, promotions, and fee schedules, loaded
// from a YAML file. The engine treats a loaded catalog as an immutable
// snapshot; refreshing means loading a new one.
package catalog

import (
	"fmt"
	"io"
	"sort"

	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/spf13/viper"
)

// Catalog holds one consistent snapshot of all comparison inputs.
type Catalog struct {
	Banks      []Bank
	Products   []LoanProduct
	Promotions []Promotion
	FeeTypes   []FeeType
	Fees       []Fee

	bankByID      map[int64]*Bank
	feeTypeByCode map[string]*FeeType
	promosByBank  map[int64][]*Promotion
	feesByBank    map[int64][]*Fee
}

// LoadCatalog reads the YAML-formatted catalog at the given path.
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading catalog file, %s", err)
	}

	return unmarshalCatalog(v)
}

// LoadCatalogFromReader reads a YAML-formatted catalog from an io.Reader.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading catalog data, %s", err)
	}

	return unmarshalCatalog(v)
}

func unmarshalCatalog(v *viper.Viper) (*Catalog, error) {
	var catalog Catalog
	if err := v.Unmarshal(&catalog, viper.DecodeHook(money.DecimalDecodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode catalog into struct, %s", err)
	}

	if err := catalog.Finish(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// New assembles a catalog from already-constructed entities. Used by tests
// and by callers that source catalog data from somewhere other than YAML.
func New(banks []Bank, products []LoanProduct, promotions []Promotion, feeTypes []FeeType, fees []Fee) (*Catalog, error) {
	catalog := Catalog{
		Banks:      banks,
		Products:   products,
		Promotions: promotions,
		FeeTypes:   feeTypes,
		Fees:       fees,
	}
	if err := catalog.Finish(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Finish parses promotion dates and builds the lookup indexes. Duplicate
// (bank, fee-type) rows beyond the first are dropped to restore the
// uniqueness invariant; Validate reports them.
func (c *Catalog) Finish() error {
	for i := range c.Promotions {
		if err := c.Promotions[i].ParseDates(); err != nil {
			return fmt.Errorf("promotion %d has malformed dates: %w", c.Promotions[i].ID, err)
		}
	}

	c.bankByID = make(map[int64]*Bank, len(c.Banks))
	for i := range c.Banks {
		c.bankByID[c.Banks[i].ID] = &c.Banks[i]
	}

	c.feeTypeByCode = make(map[string]*FeeType, len(c.FeeTypes))
	for i := range c.FeeTypes {
		c.feeTypeByCode[c.FeeTypes[i].Code] = &c.FeeTypes[i]
	}

	c.promosByBank = make(map[int64][]*Promotion)
	for i := range c.Promotions {
		p := &c.Promotions[i]
		c.promosByBank[p.BankID] = append(c.promosByBank[p.BankID], p)
	}
	// Descending priority so the resolver's first qualifying hit wins.
	for _, promos := range c.promosByBank {
		sort.SliceStable(promos, func(i, j int) bool {
			if promos[i].Priority != promos[j].Priority {
				return promos[i].Priority > promos[j].Priority
			}
			return promos[i].ID < promos[j].ID
		})
	}

	c.feesByBank = make(map[int64][]*Fee)
	seen := make(map[string]struct{}, len(c.Fees))
	for i := range c.Fees {
		f := &c.Fees[i]
		key := fmt.Sprintf("%d/%s", f.BankID, f.FeeType)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.feesByBank[f.BankID] = append(c.feesByBank[f.BankID], f)
	}

	return nil
}

// BankByID looks up a bank by its identifier.
func (c *Catalog) BankByID(id int64) (*Bank, bool) {
	bank, ok := c.bankByID[id]
	return bank, ok
}

// FeeTypeByCode looks up a fee type by its code.
func (c *Catalog) FeeTypeByCode(code string) (*FeeType, bool) {
	ft, ok := c.feeTypeByCode[code]
	return ft, ok
}

// ActiveRefinanceProducts returns the active products of type refinance, the
// candidate set for a comparison, in catalog order.
func (c *Catalog) ActiveRefinanceProducts() []LoanProduct {
	products := make([]LoanProduct, 0, len(c.Products))
	for _, p := range c.Products {
		if p.Active && p.ProductType == constants.ProductTypeRefinance {
			products = append(products, p)
		}
	}
	return products
}

// PromotionsForBank returns the bank's promotions in descending priority
// order, ties broken by lowest promotion ID.
func (c *Catalog) PromotionsForBank(bankID int64) []*Promotion {
	return c.promosByBank[bankID]
}

// FeesForBank returns the bank's fee rows after duplicate suppression.
func (c *Catalog) FeesForBank(bankID int64) []*Fee {
	return c.feesByBank[bankID]
}

// Validate performs general validation of the catalog and returns warnings.
// Warnings do not prevent the catalog from being used; entries that violate
// hard invariants simply never match a request.
func (c *Catalog) Validate() []string {
	var warnings []string

	for _, p := range c.Products {
		if p.MinLoanAmount.GreaterThan(p.MaxLoanAmount) {
			warnings = append(warnings, fmt.Sprintf(
				"product %q (%d): minLoanAmount %s exceeds maxLoanAmount %s",
				p.Name, p.ID, p.MinLoanAmount, p.MaxLoanAmount))
		}
		if p.MaxLTV < 1 || p.MaxLTV > 100 {
			warnings = append(warnings, fmt.Sprintf(
				"product %q (%d): maxLtv %d outside [1,100]", p.Name, p.ID, p.MaxLTV))
		}
		if p.MaxTermYears < 1 || p.MaxTermYears > 50 {
			warnings = append(warnings, fmt.Sprintf(
				"product %q (%d): maxTermYears %d outside [1,50]", p.Name, p.ID, p.MaxTermYears))
		}
		if _, ok := c.bankByID[p.BankID]; !ok {
			warnings = append(warnings, fmt.Sprintf(
				"product %q (%d): references unknown bank %d", p.Name, p.ID, p.BankID))
		}
	}

	for _, promo := range c.Promotions {
		if promo.start.After(promo.end) {
			warnings = append(warnings, fmt.Sprintf(
				"promotion %q (%d): startDate %s after endDate %s",
				promo.Title, promo.ID, promo.StartDate, promo.EndDate))
		}
		if _, ok := c.bankByID[promo.BankID]; !ok {
			warnings = append(warnings, fmt.Sprintf(
				"promotion %q (%d): references unknown bank %d", promo.Title, promo.ID, promo.BankID))
		}
	}

	seen := make(map[string]int)
	for _, f := range c.Fees {
		key := fmt.Sprintf("%d/%s", f.BankID, f.FeeType)
		seen[key]++
		if seen[key] == 2 {
			warnings = append(warnings, fmt.Sprintf(
				"fee %s duplicated for bank %d; only the first row is used", f.FeeType, f.BankID))
		}
		if _, ok := c.feeTypeByCode[f.FeeType]; !ok {
			warnings = append(warnings, fmt.Sprintf(
				"fee for bank %d references unknown fee type %q", f.BankID, f.FeeType))
		}
	}

	for _, b := range c.Banks {
		if b.Active && b.Contact.Phone == "" && b.Contact.Email == "" {
			warnings = append(warnings, fmt.Sprintf(
				"bank %q (%d): no contact information", b.Name, b.ID))
		}
	}

	return warnings
}
