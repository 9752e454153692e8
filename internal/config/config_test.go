package config

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const fullConfigYAML = `
catalogPath: testdata/catalog.yaml
market:
  referenceRate: 2.75
server:
  address: ":9090"
  databasePath: /var/lib/refinance/applications.db
  maxBodyBytes: 131072
logging:
  level: debug
  format: console
output:
  format: csv
request:
  principal: 2000000
  propertyValue: 2500000
  monthlyIncome: 50000
  desiredTermYears: 20
`

func TestLoadConfigurationFromReader(t *testing.T) {
	cfg, err := LoadConfigurationFromReader(strings.NewReader(fullConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error: %s", err)
	}

	if cfg.CatalogPath != "testdata/catalog.yaml" {
		t.Errorf("catalogPath = %q", cfg.CatalogPath)
	}
	if !cfg.Market.ReferenceRate.Equal(decimal.RequireFromString("2.75")) {
		t.Errorf("referenceRate = %s, expected 2.75", cfg.Market.ReferenceRate)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("server address = %q", cfg.Server.Address)
	}
	if cfg.Server.MaxBodyBytes != 131072 {
		t.Errorf("maxBodyBytes = %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging config = %+v", cfg.Logging)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("output format = %q", cfg.Output.Format)
	}

	if cfg.Request == nil {
		t.Fatal("request block not decoded")
	}
	if !cfg.Request.Principal.Equal(decimal.RequireFromString("2000000")) {
		t.Errorf("request principal = %s", cfg.Request.Principal)
	}
	if cfg.Request.DesiredTermYears != 20 {
		t.Errorf("desiredTermYears = %d", cfg.Request.DesiredTermYears)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfigurationFromReader(strings.NewReader("logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error: %s", err)
	}

	if cfg.CatalogPath == "" {
		t.Error("catalogPath default not applied")
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server address default = %q, expected :8080", cfg.Server.Address)
	}
	if cfg.Server.DatabasePath == "" {
		t.Error("databasePath default not applied")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		t.Error("maxBodyBytes default not applied")
	}
	if cfg.Output.Format != "pretty" {
		t.Errorf("output format default = %q, expected pretty", cfg.Output.Format)
	}
	if cfg.Request != nil {
		t.Error("absent request block should stay nil")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		fragment string
	}{
		{
			"Negative reference rate",
			"market:\n  referenceRate: -1.0\n",
			"referenceRate",
		},
		{
			"Unknown output format",
			"output:\n  format: xml\n",
			"output.format",
		},
		{
			"One-shot request missing principal",
			"request:\n  monthlyIncome: 50000\n  desiredTermYears: 20\n",
			"request.principal",
		},
		{
			"One-shot request missing income",
			"request:\n  principal: 2000000\n  desiredTermYears: 20\n",
			"request.monthlyIncome",
		},
		{
			"One-shot request missing term",
			"request:\n  principal: 2000000\n  monthlyIncome: 50000\n",
			"request.desiredTermYears",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigurationFromReader(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error: %s", err)
			}
			warnings := cfg.ValidateConfiguration()
			found := false
			for _, w := range warnings {
				if strings.Contains(w, tt.fragment) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected warning containing %q, got %v", tt.fragment, warnings)
			}
		})
	}

	t.Run("Clean configuration", func(t *testing.T) {
		cfg, err := LoadConfigurationFromReader(strings.NewReader(fullConfigYAML))
		if err != nil {
			t.Fatalf("LoadConfigurationFromReader() error: %s", err)
		}
		if warnings := cfg.ValidateConfiguration(); len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}
	})
}
