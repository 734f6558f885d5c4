package cost

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thomas-vilte/promptcache/internal/errors"
)

// PricingFile is the YAML document accepted by LoadPricingOverrides:
//
//	models:
//	  claude-3-5-haiku:
//	    base: 0.80
//	    cache_read: 0.08
//	    cache_write: 1.00
//	    output: 4.00
type PricingFile struct {
	Models map[string]PricingTable `yaml:"models"`
}

// ParsePricing decodes and validates a pricing document.
func ParsePricing(data []byte) (map[string]PricingTable, error) {
	var file PricingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ErrPricingInvalid.WithError(err)
	}

	for model, table := range file.Models {
		if strings.TrimSpace(model) == "" {
			return nil, errors.ErrPricingInvalid.WithError(fmt.Errorf("empty model name"))
		}
		if err := table.Validate(); err != nil {
			return nil, errors.ErrPricingInvalid.WithError(err).WithContext("model", model)
		}
	}
	return file.Models, nil
}

// LoadPricingOverrides merges the rates found in path into the calculator.
func (c *Calculator) LoadPricingOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ErrPricingInvalid.WithError(err).WithContext("path", path)
	}

	tables, err := ParsePricing(data)
	if err != nil {
		return err
	}

	for model, table := range tables {
		c.AddPricing(model, table)
	}

	slog.Debug("pricing overrides loaded",
		"path", path,
		"count", len(tables))

	return nil
}
