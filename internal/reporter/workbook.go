package reporter

import (
	"fmt"

	"ledger-reconciliation-service/pkg/errors"
	"ledger-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Sheet names, in the fixed presentational order of the output workbook.
const (
	SheetSummary         = "Summary"
	SheetMatches         = "Matches"
	SheetBankUnmatched   = "Bank - Unmatched"
	SheetLedgerUnmatched = "Ledger - Unmatched"
	SheetCombined        = "Combined Report"
)

// WorkbookWriter serializes a Report into a multi-sheet XLSX workbook.
type WorkbookWriter struct {
	logger logger.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{
		logger: logger.GetGlobalLogger().WithComponent("workbook_writer"),
	}
}

// Write saves the report to path as an XLSX workbook with sheets in the
// order: summary, matches, unmatched bank, unmatched ledger, combined report.
func (w *WorkbookWriter) Write(report *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary, keeping it first.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return errors.InternalError("workbook summary sheet", err)
	}
	if err := w.writeSummary(f, report); err != nil {
		return err
	}
	if err := w.writeMatches(f, report); err != nil {
		return err
	}
	if err := w.writeAnnotated(f, SheetBankUnmatched, report.BankHeaders, report.UnmatchedBank); err != nil {
		return err
	}
	if err := w.writeAnnotated(f, SheetLedgerUnmatched, report.LedgerHeaders, report.UnmatchedLedger); err != nil {
		return err
	}
	if err := w.writeCombined(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err).
			WithSuggestion("check that the output directory exists and is writable")
	}

	w.logger.WithFields(logger.Fields{
		"path":    path,
		"matched": report.Summary.Matched,
	}).Info("Workbook saved")
	return nil
}

func (w *WorkbookWriter) writeSummary(f *excelize.File, report *Report) error {
	s := report.Summary
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Bank Statement records", s.TotalBank},
		{"Bank records matched with Ledger", s.Matched},
		{"Bank records unmatched with Ledger", s.UnmatchedBank},
		{"Total Ledger records", s.TotalLedger},
		{"Ledger records matched with Bank", s.Matched},
		{"Ledger records unmatched with Bank", s.UnmatchedLedger},
		{"Match rate percentage", fmt.Sprintf("%.2f%%", s.MatchRate*100)},
		{"Key columns", joinColumns(report.KeyColumns)},
	}
	return writeRows(f, SheetSummary, rows)
}

func (w *WorkbookWriter) writeMatches(f *excelize.File, report *Report) error {
	if _, err := f.NewSheet(SheetMatches); err != nil {
		return errors.InternalError("workbook matches sheet", err)
	}

	header := []interface{}{"Bank Row", "Ledger Row"}
	for _, h := range report.BankHeaders {
		header = append(header, "Bank: "+h)
	}
	for _, h := range report.LedgerHeaders {
		header = append(header, "Ledger: "+h)
	}

	rows := [][]interface{}{header}
	for _, m := range report.Matched {
		// Row numbers are 1-based for the back-office reader.
		row := []interface{}{m.BankIndex + 1, m.LedgerIndex + 1}
		for _, h := range report.BankHeaders {
			row = append(row, m.Bank.Get(h))
		}
		for _, h := range report.LedgerHeaders {
			row = append(row, m.Ledger.Get(h))
		}
		rows = append(rows, row)
	}
	return writeRows(f, SheetMatches, rows)
}

func (w *WorkbookWriter) writeAnnotated(f *excelize.File, sheet string, headers []string, rows []AnnotatedRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.InternalError("workbook sheet "+sheet, err)
	}

	header := []interface{}{"Row"}
	for _, h := range headers {
		header = append(header, h)
	}
	header = append(header, "Status")

	out := [][]interface{}{header}
	for _, r := range rows {
		row := []interface{}{r.Index + 1}
		for _, h := range headers {
			row = append(row, r.Record.Get(h))
		}
		row = append(row, r.Status)
		out = append(out, row)
	}
	return writeRows(f, sheet, out)
}

func (w *WorkbookWriter) writeCombined(f *excelize.File, report *Report) error {
	if _, err := f.NewSheet(SheetCombined); err != nil {
		return errors.InternalError("workbook combined sheet", err)
	}

	// The two sides can carry different headers; the combined sheet uses the
	// bank headers followed by ledger-only extras, blank where a side lacks
	// the column.
	columns := unionHeaders(report.BankHeaders, report.LedgerHeaders)

	header := []interface{}{"Source", "Row"}
	for _, c := range columns {
		header = append(header, c)
	}
	header = append(header, "Status")

	rows := [][]interface{}{header}
	for _, r := range report.Combined {
		row := []interface{}{r.Role.String(), r.Index + 1}
		for _, c := range columns {
			row = append(row, r.Record.Get(c))
		}
		row = append(row, r.Status)
		rows = append(rows, row)
	}
	return writeRows(f, SheetCombined, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.InternalError("workbook cell coordinates", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.InternalError("workbook row write", err)
		}
	}
	return nil
}

func unionHeaders(bank, ledger []string) []string {
	columns := make([]string, 0, len(bank)+len(ledger))
	seen := make(map[string]struct{}, len(bank)+len(ledger))
	for _, h := range bank {
		if _, dup := seen[h]; !dup {
			seen[h] = struct{}{}
			columns = append(columns, h)
		}
	}
	for _, h := range ledger {
		if _, dup := seen[h]; !dup {
			seen[h] = struct{}{}
			columns = append(columns, h)
		}
	}
	return columns
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
