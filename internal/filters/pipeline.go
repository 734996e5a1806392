// Package filters implements the row-filtering pipeline that cleans raw
// ingested rows before comparison.
//
// Stages execute in a fixed order; each stage is independently enableable and
// a disabled stage is a no-op that still reports its retained count, so the
// audit trail has one entry per stage on every run. Structural cleanup
// (header extraction, empty-row removal) always runs before the
// content-validity stages.
package filters

import (
	"fmt"
	"strings"
	"time"

	"ledger-reconciliation-service/internal/models"
	"ledger-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Canonical stage names, in execution order.
const (
	StageHeaderExtraction = "header_extraction"
	StageEmptyRows        = "empty_row_removal"
	StageSummaryRows      = "summary_row_filter"
	StageDateValidity     = "date_validity_filter"
	StageAmountValidity   = "amount_validity_filter"
)

// headerScanLimit bounds how many leading rows are searched for the header.
const headerScanLimit = 20

// DefaultSummaryMarkers are the aggregate-row phrases dropped by the
// summary-row filter. Markers containing "balance" match by containment;
// the rest require a short row or the marker standing as its own word, so
// transaction remarks that merely mention "total" survive.
func DefaultSummaryMarkers() []string {
	return []string{
		"total", "grand total", "sub total", "summary", "overall total",
		"closing balance", "opening balance", "balance c/f", "balance b/f",
	}
}

// DefaultDateLayouts are the layouts tried by the date-validity filter.
func DefaultDateLayouts() []string {
	return []string{
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
		"02-01-2006",
		"2006/01/02",
		"02-Jan-2006",
		"2006-01-02 15:04:05",
	}
}

// Config controls which togglable stages run and how they locate their
// designated columns. Zero-value columns are discovered from the headers.
type Config struct {
	// FilterSummaryRows enables the summary-row stage. Off by default: the
	// operator usually wants aggregate rows visible in the combined report.
	FilterSummaryRows bool
	// FilterInvalidDates enables the date-validity stage. Off by default.
	FilterInvalidDates bool
	// FilterInvalidAmounts enables the amount-validity stage. On by default.
	FilterInvalidAmounts bool

	// SummaryMarkers overrides the aggregate-row marker set.
	SummaryMarkers []string
	// DateLayouts overrides the layouts accepted by the date filter.
	DateLayouts []string

	// DateColumn, when set, names the date column explicitly instead of
	// discovering it from the headers.
	DateColumn string
	// AmountColumn, when set, names the amount column explicitly. Otherwise
	// the bank role uses its credit column and the ledger role its debit
	// column.
	AmountColumn string
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		FilterSummaryRows:    false,
		FilterInvalidDates:   false,
		FilterInvalidAmounts: true,
		SummaryMarkers:       DefaultSummaryMarkers(),
		DateLayouts:          DefaultDateLayouts(),
	}
}

// StageResult reports one stage of a pipeline run for the audit trail.
type StageResult struct {
	Name     string
	Enabled  bool
	Retained int
}

// Pipeline cleans one dataset's raw rows. It holds no per-run state, so a
// single Pipeline may serve concurrent runs.
type Pipeline struct {
	config *Config
	logger logger.Logger
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.SummaryMarkers) == 0 {
		config.SummaryMarkers = DefaultSummaryMarkers()
	}
	if len(config.DateLayouts) == 0 {
		config.DateLayouts = DefaultDateLayouts()
	}
	return &Pipeline{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("filter_pipeline"),
	}
}

// stage is one descriptor in the ordered stage list: a name, its enable flag,
// and a predicate deciding which records survive. Stages are applied as a
// fold over the record sequence, never by mutating it in place.
type stage struct {
	name    string
	enabled bool
	keep    func(d *models.Dataset, rec models.Record) bool
}

// Run transforms raw positional rows into a cleaned Dataset, reporting every
// stage's retained count. The raw rows are left untouched.
func (p *Pipeline) Run(role models.DatasetRole, rawRows [][]string) (*models.Dataset, []StageResult, error) {
	if !role.IsValid() {
		return nil, nil, fmt.Errorf("invalid dataset role: %q", role)
	}

	audit := logger.NewAuditTrail(p.logger, role.String())

	// Header extraction is structural: it turns positional rows into
	// records, so it runs before the descriptor fold and is always active.
	dataset := p.extractHeader(role, rawRows)
	results := []StageResult{{Name: StageHeaderExtraction, Enabled: true, Retained: dataset.Len()}}
	audit.Stage(StageHeaderExtraction, true, dataset.Len())

	stages := []stage{
		{name: StageEmptyRows, enabled: true, keep: keepNonEmpty},
		{name: StageSummaryRows, enabled: p.config.FilterSummaryRows, keep: p.keepNonSummary},
		{name: StageDateValidity, enabled: p.config.FilterInvalidDates, keep: p.keepValidDate},
		{name: StageAmountValidity, enabled: p.config.FilterInvalidAmounts, keep: p.keepValidAmount},
	}

	for _, s := range stages {
		if s.enabled {
			kept := make([]models.Record, 0, len(dataset.Records))
			for _, rec := range dataset.Records {
				if s.keep(dataset, rec) {
					kept = append(kept, rec)
				}
			}
			dataset = &models.Dataset{Role: dataset.Role, Headers: dataset.Headers, Records: kept}
		}
		results = append(results, StageResult{Name: s.name, Enabled: s.enabled, Retained: dataset.Len()})
		audit.Stage(s.name, s.enabled, dataset.Len())
	}

	return dataset, results, nil
}

// extractHeader locates the header row within the first rows of the sheet and
// maps everything below it to records. Rows above the header (report titles,
// account banners) are discarded. When no row carries the expected column
// markers the first row is treated as the header.
func (p *Pipeline) extractHeader(role models.DatasetRole, rawRows [][]string) *models.Dataset {
	headerRow := p.findHeaderRow(role, rawRows)
	if headerRow < 0 {
		p.logger.WithField("dataset", role.String()).
			Warn("No header row found within scan limit, using first row")
		headerRow = 0
	}
	if len(rawRows) == 0 {
		return models.NewDataset(role, nil, nil)
	}

	headers := normalizeHeaderCells(rawRows[headerRow])
	records := make([]models.Record, 0, len(rawRows)-headerRow-1)
	for _, row := range rawRows[headerRow+1:] {
		rec := make(models.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	return models.NewDataset(role, headers, records)
}

// findHeaderRow scans the leading rows for the row carrying the role's header
// markers: a value/trans date label plus credit (bank) or debit (ledger).
func (p *Pipeline) findHeaderRow(role models.DatasetRole, rawRows [][]string) int {
	limit := len(rawRows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		hasDate := false
		hasAmount := false
		for _, cell := range rawRows[i] {
			c := strings.ToLower(cell)
			if strings.Contains(c, "value date") || strings.Contains(c, "trans date") {
				hasDate = true
			}
			switch role {
			case models.RoleBank:
				if strings.Contains(c, "credit") || strings.Contains(c, "debit") {
					hasAmount = true
				}
			default:
				if strings.Contains(c, "debit") {
					hasAmount = true
				}
			}
		}
		if hasDate && hasAmount {
			return i
		}
	}
	return -1
}

// normalizeHeaderCells trims header cells and names blank ones positionally
// so records never collide on an empty label.
func normalizeHeaderCells(cells []string) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		h := strings.TrimSpace(c)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

func keepNonEmpty(_ *models.Dataset, rec models.Record) bool {
	return !rec.IsEmpty()
}

// keepNonSummary drops rows that look like aggregate/summary lines. Markers
// containing "balance" drop the row on simple containment; the remaining
// markers only drop short rows or rows where the marker stands as its own
// word, so transaction remarks mentioning "total" are kept.
func (p *Pipeline) keepNonSummary(d *models.Dataset, rec models.Record) bool {
	joined := rec.JoinedText(d.Headers)
	if joined == "" {
		return true
	}
	words := strings.Fields(joined)

	for _, marker := range p.config.SummaryMarkers {
		marker = strings.ToLower(strings.TrimSpace(marker))
		if marker == "" || !strings.Contains(joined, marker) {
			continue
		}
		if strings.Contains(marker, "balance") {
			return false
		}
		if len(joined) < 50 {
			return false
		}
		if !strings.Contains(marker, " ") {
			for _, w := range words {
				if w == marker {
					return false
				}
			}
		}
	}
	return true
}

// keepValidDate drops rows whose date cell fails every configured layout.
// When no date column can be located the stage keeps everything.
func (p *Pipeline) keepValidDate(d *models.Dataset, rec models.Record) bool {
	col := p.dateColumn(d)
	if col == "" {
		return true
	}
	raw := strings.TrimSpace(rec.Get(col))
	if raw == "" {
		return false
	}
	for _, layout := range p.config.DateLayouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return true
		}
	}
	return false
}

// keepValidAmount keeps only rows whose role-designated amount cell is
// non-empty and numeric after stripping spaces and grouping separators, and
// not zero. When the amount column cannot be located no row survives; the
// run proceeds with an all-unmatched outcome rather than failing.
func (p *Pipeline) keepValidAmount(d *models.Dataset, rec models.Record) bool {
	col := p.amountColumn(d)
	if col == "" {
		return false
	}
	raw := strings.TrimSpace(rec.Get(col))
	if raw == "" {
		return false
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return false
	}
	return !amount.IsZero()
}

func (p *Pipeline) dateColumn(d *models.Dataset) string {
	if p.config.DateColumn != "" {
		if d.HasHeader(p.config.DateColumn) {
			return strings.TrimSpace(p.config.DateColumn)
		}
		return ""
	}
	for _, fragment := range []string{"value date", "trans date", "date"} {
		if col := d.FindHeaderContaining(fragment); col != "" {
			return col
		}
	}
	return ""
}

func (p *Pipeline) amountColumn(d *models.Dataset) string {
	if p.config.AmountColumn != "" {
		if d.HasHeader(p.config.AmountColumn) {
			return strings.TrimSpace(p.config.AmountColumn)
		}
		return ""
	}
	if d.Role == models.RoleBank {
		return d.FindHeaderContaining("credit")
	}
	return d.FindHeaderContaining("debit")
}
