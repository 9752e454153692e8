// Package constants provides shared constants for the refinance-engine application.
package constants

// DateLayout is the format expected for dates in catalog files and requests.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MoneyPlaces is the number of decimal places for currency rounding
	MoneyPlaces = 2

	// DefaultSpecialRatePeriodMonths is assumed when a promotion carries a
	// special rate but no explicit duration
	DefaultSpecialRatePeriodMonths = 12

	// MaxComparisonRows is the number of rows presented to the caller; the
	// total eligible count is reported separately
	MaxComparisonRows = 5
)

// Product and fee taxonomy constants
const (
	// ProductTypeRefinance is the product type the comparison engine operates on
	ProductTypeRefinance = "refinance"

	// FeeKindPercentage marks a fee expressed as a percent of principal
	FeeKindPercentage = "percentage"

	// FeeKindFixed marks a fee expressed as a flat currency amount
	FeeKindFixed = "fixed"

	// FeeCodeLegal is the fee-type code reported as the legal fee line item
	FeeCodeLegal = "legal_fee"

	// FeeCodeProcessing and FeeCodeAppraisal are sourced from the product
	// itself rather than the bank's generic fee table
	FeeCodeProcessing = "processing_fee"
	FeeCodeAppraisal  = "appraisal_fee"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultCatalogFile is the default catalog file name
	DefaultCatalogFile = "catalog.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultDatabaseFile is the default path for the application store
	DefaultDatabaseFile = "applications.db"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)
