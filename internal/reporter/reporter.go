// Package reporter assembles the reconciliation outcome into the structured
// report and serializes it into the multi-sheet output workbook.
//
// Assembly is pure aggregation over already-validated structures: every row
// ends up classified, and there are no error states at this stage.
package reporter

import (
	"ledger-reconciliation-service/internal/matcher"
	"ledger-reconciliation-service/internal/models"
)

// Status labels applied to rows in the report sheets.
const (
	StatusBankMatched     = "Matched with Ledger"
	StatusBankUnmatched   = "Unmatched with Ledger"
	StatusLedgerMatched   = "Matched with Bank"
	StatusLedgerUnmatched = "Unmatched with Bank"
)

// Summary carries the aggregate counts of a reconciliation run.
type Summary struct {
	TotalBank       int
	TotalLedger     int
	Matched         int
	UnmatchedBank   int
	UnmatchedLedger int
	// MatchRate is matched over the larger side's total, in [0, 1];
	// zero when both sides are empty.
	MatchRate float64
}

// MatchedRow joins one accepted match's rows from both sides.
type MatchedRow struct {
	BankIndex   int
	LedgerIndex int
	Bank        models.Record
	Ledger      models.Record
}

// AnnotatedRow is one original row tagged with its reconciliation status.
type AnnotatedRow struct {
	Role   models.DatasetRole
	Index  int
	Record models.Record
	Status string
}

// Report is the full structured outcome: summary counts plus the four
// logical tables consumed by the persistence collaborator.
type Report struct {
	Summary         Summary
	KeyColumns      []string
	BankHeaders     []string
	LedgerHeaders   []string
	Matched         []MatchedRow
	UnmatchedBank   []AnnotatedRow
	UnmatchedLedger []AnnotatedRow
	// Combined lists every original row from both sides, bank rows first,
	// each tagged matched/unmatched.
	Combined []AnnotatedRow
}

// Assemble classifies every row of both datasets and produces the report.
func Assemble(bank, ledger *models.Dataset, keyColumns []string, matches []matcher.MatchResult, unmatchedBank, unmatchedLedger []matcher.UnmatchedRecord) *Report {
	report := &Report{
		Summary: Summary{
			TotalBank:       bank.Len(),
			TotalLedger:     ledger.Len(),
			Matched:         len(matches),
			UnmatchedBank:   len(unmatchedBank),
			UnmatchedLedger: len(unmatchedLedger),
			MatchRate:       matchRate(len(matches), bank.Len(), ledger.Len()),
		},
		KeyColumns:    keyColumns,
		BankHeaders:   bank.Headers,
		LedgerHeaders: ledger.Headers,
	}

	claimedBank := make(map[int]struct{}, len(matches))
	claimedLedger := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		claimedBank[m.BankIndex] = struct{}{}
		claimedLedger[m.LedgerIndex] = struct{}{}
		report.Matched = append(report.Matched, MatchedRow{
			BankIndex:   m.BankIndex,
			LedgerIndex: m.LedgerIndex,
			Bank:        bank.Records[m.BankIndex],
			Ledger:      ledger.Records[m.LedgerIndex],
		})
	}

	for _, u := range unmatchedBank {
		report.UnmatchedBank = append(report.UnmatchedBank, AnnotatedRow{
			Role:   models.RoleBank,
			Index:  u.Index,
			Record: bank.Records[u.Index],
			Status: StatusBankUnmatched,
		})
	}
	for _, u := range unmatchedLedger {
		report.UnmatchedLedger = append(report.UnmatchedLedger, AnnotatedRow{
			Role:   models.RoleLedger,
			Index:  u.Index,
			Record: ledger.Records[u.Index],
			Status: StatusLedgerUnmatched,
		})
	}

	for i, rec := range bank.Records {
		status := StatusBankUnmatched
		if _, ok := claimedBank[i]; ok {
			status = StatusBankMatched
		}
		report.Combined = append(report.Combined, AnnotatedRow{
			Role:   models.RoleBank,
			Index:  i,
			Record: rec,
			Status: status,
		})
	}
	for j, rec := range ledger.Records {
		status := StatusLedgerUnmatched
		if _, ok := claimedLedger[j]; ok {
			status = StatusLedgerMatched
		}
		report.Combined = append(report.Combined, AnnotatedRow{
			Role:   models.RoleLedger,
			Index:  j,
			Record: rec,
			Status: status,
		})
	}

	return report
}

// matchRate divides the matched count by the larger side's total. A run
// where both sides filtered down to nothing rates zero, not NaN.
func matchRate(matched, totalBank, totalLedger int) float64 {
	larger := totalBank
	if totalLedger > larger {
		larger = totalLedger
	}
	if larger == 0 {
		return 0
	}
	return float64(matched) / float64(larger)
}
