// Package config assembles service configurations from CLI options.
package config

import (
	"strings"

	"ledger-reconciliation-service/internal/filters"
	"ledger-reconciliation-service/internal/parsers"
	"ledger-reconciliation-service/internal/reconciler"
)

// Options carries the resolved CLI flag values for a reconcile run.
type Options struct {
	KeyColumns             []string
	RequireMatchingHeaders bool
	FilterSummaryRows      bool
	FilterInvalidDates     bool
	FilterInvalidAmounts   bool
	SummaryMarkers         []string
	Delimiter              string
}

// CreateServiceConfig builds the reconciliation service configuration from
// the CLI options, starting from the documented defaults.
func CreateServiceConfig(opts Options) *reconciler.Config {
	cfg := reconciler.DefaultConfig()
	cfg.KeyColumns = cleanColumns(opts.KeyColumns)
	cfg.RequireMatchingHeaders = opts.RequireMatchingHeaders

	cfg.Filters = filters.DefaultConfig()
	cfg.Filters.FilterSummaryRows = opts.FilterSummaryRows
	cfg.Filters.FilterInvalidDates = opts.FilterInvalidDates
	cfg.Filters.FilterInvalidAmounts = opts.FilterInvalidAmounts
	if len(opts.SummaryMarkers) > 0 {
		cfg.Filters.SummaryMarkers = cleanColumns(opts.SummaryMarkers)
	}

	cfg.Reader = parsers.DefaultConfig()
	if opts.Delimiter != "" {
		cfg.Reader.Delimiter = rune(opts.Delimiter[0])
	}
	return cfg
}

// cleanColumns trims whitespace from each entry and drops empty ones.
func cleanColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
