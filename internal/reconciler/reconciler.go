// Package reconciler provides high-level orchestration for the reconciliation
// process.
//
// The Service coordinates the complete workflow: loading both tabular sources,
// running the row filter pipeline per dataset, aligning headers, selecting the
// match key, executing exclusive one-to-one matching, and assembling the final
// report. Each phase is delegated to its own package; this package owns only
// the sequencing and the top-level error handling.
//
// Example usage:
//
//	service, err := reconciler.NewService(reconciler.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	result, err := service.Process(ctx, &reconciler.Request{
//		BankFile:   "bank.xlsx",
//		LedgerFile: "ledger.xlsx",
//	})
package reconciler

import (
	"context"
	"time"

	"ledger-reconciliation-service/internal/aligner"
	"ledger-reconciliation-service/internal/filters"
	"ledger-reconciliation-service/internal/matcher"
	"ledger-reconciliation-service/internal/models"
	"ledger-reconciliation-service/internal/parsers"
	"ledger-reconciliation-service/internal/reporter"
	"ledger-reconciliation-service/pkg/errors"
	"ledger-reconciliation-service/pkg/logger"
)

// Config holds configuration options for the reconciliation service.
type Config struct {
	// KeyColumns names the columns that form the match key. When empty, the
	// key defaults to every column the two sources share, in bank order.
	KeyColumns []string

	// RequireMatchingHeaders aborts the run when the two sources do not
	// carry the same column set. Disabling it downgrades a mismatch to a
	// warning and reconciles over the shared columns only.
	RequireMatchingHeaders bool

	// Filters configures the row filter pipeline applied to both sources.
	Filters *filters.Config

	// Reader configures delimited-text ingestion.
	Reader *parsers.Config
}

// DefaultConfig returns a default configuration for the reconciliation service.
func DefaultConfig() *Config {
	return &Config{
		RequireMatchingHeaders: true,
		Filters:                filters.DefaultConfig(),
		Reader:                 parsers.DefaultConfig(),
	}
}

// Request represents a single reconciliation run.
type Request struct {
	BankFile   string
	LedgerFile string
}

// Validate validates the reconciliation request.
func (r *Request) Validate() error {
	if r.BankFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "bank_file", nil, nil).
			WithSuggestion("Provide the bank statement file path via --bank-file or BANK_STATEMENT_FILE_PATH")
	}
	if r.LedgerFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "ledger_file", nil, nil).
			WithSuggestion("Provide the ledger file path via --ledger-file or LEDGER_FILE_PATH")
	}
	return nil
}

// Result contains the complete outcome of a reconciliation run.
type Result struct {
	Report *reporter.Report

	// Per-stage audit counts for each source, in execution order.
	BankStages   []filters.StageResult
	LedgerStages []filters.StageResult

	// Alignment records the header comparison, including suggestions for
	// mismatched columns when the sources disagree.
	Alignment *aligner.AlignmentResult

	ProcessedAt time.Time
	Duration    time.Duration
}

// Service orchestrates the complete reconciliation process.
type Service struct {
	config   *Config
	reader   *parsers.FileReader
	pipeline *filters.Pipeline
	logger   logger.Logger
}

// NewService creates a reconciliation service with the given configuration.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Filters == nil {
		config.Filters = filters.DefaultConfig()
	}

	return &Service{
		config:   config,
		reader:   parsers.NewFileReader(config.Reader),
		pipeline: filters.NewPipeline(config.Filters),
		logger:   logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}, nil
}

// Process executes the full reconciliation workflow for the request.
func (s *Service) Process(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"bank_file":   req.BankFile,
		"ledger_file": req.LedgerFile,
	}).Info("Starting reconciliation")

	bank, bankStages, err := s.loadDataset(ctx, models.RoleBank, req.BankFile)
	if err != nil {
		return nil, err
	}
	ledger, ledgerStages, err := s.loadDataset(ctx, models.RoleLedger, req.LedgerFile)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError("reconciliation", err)
	}

	alignment := aligner.Align(bank.Headers, ledger.Headers)
	if alignment.Status == aligner.StatusMismatched {
		if s.config.RequireMatchingHeaders {
			return nil, alignment.MismatchError()
		}
		s.logger.WithFields(logger.Fields{
			"missing_from_bank":   len(alignment.MissingFromBank),
			"missing_from_ledger": len(alignment.MissingFromLedger),
		}).Warn("Header mismatch ignored, reconciling over shared columns")
	}

	keyColumns, err := aligner.SelectKeys(bank.Headers, ledger.Headers, s.config.KeyColumns)
	if err != nil {
		return nil, err
	}

	engine := matcher.NewEngine(keyColumns)
	matches := engine.Match(bank, ledger)
	unmatchedBank, unmatchedLedger := matcher.Unmatched(bank, ledger, matches)

	report := reporter.Assemble(bank, ledger, keyColumns, matches, unmatchedBank, unmatchedLedger)

	s.logger.WithFields(logger.Fields{
		"matched":          report.Summary.Matched,
		"unmatched_bank":   report.Summary.UnmatchedBank,
		"unmatched_ledger": report.Summary.UnmatchedLedger,
		"match_rate":       report.Summary.MatchRate,
		"duration":         time.Since(start).String(),
	}).Info("Reconciliation complete")

	return &Result{
		Report:       report,
		BankStages:   bankStages,
		LedgerStages: ledgerStages,
		Alignment:    alignment,
		ProcessedAt:  start,
		Duration:     time.Since(start),
	}, nil
}

// loadDataset reads one source file and runs it through the filter pipeline.
// The pipeline emits its own per-stage audit lines.
func (s *Service) loadDataset(ctx context.Context, role models.DatasetRole, path string) (*models.Dataset, []filters.StageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.InternalError("load_dataset", err)
	}

	rawRows, err := s.reader.ReadRawRows(path)
	if err != nil {
		return nil, nil, err
	}

	dataset, stages, err := s.pipeline.Run(role, rawRows)
	if err != nil {
		return nil, nil, err
	}
	return dataset, stages, nil
}
