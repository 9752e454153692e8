// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/kathai/refinance-engine/pkg/constants"
	"github.com/kathai/refinance-engine/pkg/money"
	"github.com/kathai/refinance-engine/pkg/validation"
)

// Configuration holds all configuration for the refinance engine.
type Configuration struct {
	CatalogPath string         `yaml:"catalogPath,omitempty"`
	Market      MarketConfig   `yaml:"market,omitempty"`
	Server      ServerConfig   `yaml:"server,omitempty"`
	Logging     LoggingConfig  `yaml:"logging,omitempty"`
	Output      OutputConfig   `yaml:"output,omitempty"`
	Request     *RequestConfig `yaml:"request,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ServerConfig holds the HTTP server and application store settings.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	DatabasePath string `yaml:"databasePath,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// MarketConfig holds market-level inputs shared by every comparison. The
// reference rate is an operator-supplied input, not a built-in constant; it
// changes with central bank announcements.
type MarketConfig struct {
	ReferenceRate decimal.Decimal `yaml:"referenceRate,omitempty"` // annual percent, e.g. MRR
}

// RequestConfig is an optional pre-baked comparison request for one-shot CLI
// runs. When present the binary computes a comparison and prints it instead
// of serving HTTP.
type RequestConfig struct {
	Principal        decimal.Decimal `yaml:"principal"`
	PropertyValue    decimal.Decimal `yaml:"propertyValue,omitempty"`
	MonthlyIncome    decimal.Decimal `yaml:"monthlyIncome"`
	DesiredTermYears int             `yaml:"desiredTermYears"`
	BaselinePayment  decimal.Decimal `yaml:"baselinePayment,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return unmarshalConfiguration(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// io.Reader.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return unmarshalConfiguration(v)
}

func unmarshalConfiguration(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration, viper.DecodeHook(money.DecimalDecodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.CatalogPath == "" {
		c.CatalogPath = constants.DefaultCatalogFile
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.DatabasePath == "" {
		c.Server.DatabasePath = constants.DefaultDatabaseFile
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Warnings do not prevent startup.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Market.ReferenceRate.IsNegative() {
		warnings = append(warnings, fmt.Sprintf(
			"market.referenceRate %s is negative; spreads will not be reported", c.Market.ReferenceRate))
	}

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, fmt.Sprintf(
			"output.format %q not recognized; falling back to %s", c.Output.Format, constants.OutputFormatPretty))
	}

	if c.Request != nil {
		if !c.Request.Principal.IsPositive() {
			warnings = append(warnings, "request.principal must be positive for a one-shot run")
		}
		if !c.Request.MonthlyIncome.IsPositive() {
			warnings = append(warnings, "request.monthlyIncome must be positive for a one-shot run")
		}
		if c.Request.DesiredTermYears <= 0 {
			warnings = append(warnings, "request.desiredTermYears must be positive for a one-shot run")
		}
	}

	return warnings
}
