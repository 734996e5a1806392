// Package matcher implements the exclusive one-to-one record matching between
// a bank dataset and a ledger dataset.
//
// Candidate pairs are rows whose MatchKeys over the selected key columns are
// equal. The matcher walks candidates in a fixed deterministic order (bank
// row index ascending, then ledger row index ascending) and accepts a pair
// only while neither index has been claimed, so an N:M duplicate-key group
// resolves to min(N, M) matches instead of the N×M cross product. The
// tie-break is always "earliest bank row claims earliest available ledger
// row"; which duplicate instance ends up matched versus unmatched is an
// observable outcome that must not change between runs.
package matcher

import (
	"ledger-reconciliation-service/internal/models"
	"ledger-reconciliation-service/pkg/logger"
)

// MatchResult pairs a bank row with the ledger row it claimed, along with the
// key columns that matched. Across a result set each bank index and each
// ledger index appears at most once.
type MatchResult struct {
	BankIndex   int
	LedgerIndex int
	KeyColumns  []string
}

// UnmatchedRecord tags a row never claimed by any match.
type UnmatchedRecord struct {
	Role  models.DatasetRole
	Index int
}

// Engine performs the matching for one set of key columns. Each Match call
// owns its claim sets, so one Engine may serve concurrent runs as long as
// each operates on its own datasets.
type Engine struct {
	keyColumns []string
	logger     logger.Logger
}

// NewEngine creates a matching engine over the given key columns.
func NewEngine(keyColumns []string) *Engine {
	return &Engine{
		keyColumns: keyColumns,
		logger:     logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// KeyColumns returns the key columns the engine matches on.
func (e *Engine) KeyColumns() []string {
	return e.keyColumns
}

// Match computes the exclusive one-to-one pairing between the two datasets.
// Rows whose key contains an Empty component never participate. An empty
// candidate set yields zero matches without error.
func (e *Engine) Match(bank, ledger *models.Dataset) []MatchResult {
	ledgerIndex := NewKeyIndex(ledger, e.keyColumns)

	claimedBank := make(map[int]struct{})
	claimedLedger := make(map[int]struct{})
	// nextFree avoids rescanning a duplicate group's already-claimed prefix.
	nextFree := make(map[string]int)

	var matches []MatchResult
	for i, rec := range bank.Records {
		key := models.BuildKey(rec, e.keyColumns)
		if key.HasEmpty() {
			continue
		}
		if _, claimed := claimedBank[i]; claimed {
			continue
		}

		encoded := key.String()
		group := ledgerIndex.Group(encoded)
		for pos := nextFree[encoded]; pos < len(group); pos++ {
			j := group[pos]
			if _, claimed := claimedLedger[j]; claimed {
				continue
			}
			claimedBank[i] = struct{}{}
			claimedLedger[j] = struct{}{}
			nextFree[encoded] = pos + 1
			matches = append(matches, MatchResult{
				BankIndex:   i,
				LedgerIndex: j,
				KeyColumns:  e.keyColumns,
			})
			break
		}
	}

	e.logger.WithFields(logger.Fields{
		"bank_rows":     bank.Len(),
		"ledger_rows":   ledger.Len(),
		"distinct_keys": ledgerIndex.GroupCount(),
		"empty_keys":    ledgerIndex.Skipped(),
		"matches":       len(matches),
	}).Debug("Matching completed")

	return matches
}

// Unmatched derives, per dataset, the rows never claimed by any match, in
// original row order.
func Unmatched(bank, ledger *models.Dataset, matches []MatchResult) ([]UnmatchedRecord, []UnmatchedRecord) {
	claimedBank := make(map[int]struct{}, len(matches))
	claimedLedger := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		claimedBank[m.BankIndex] = struct{}{}
		claimedLedger[m.LedgerIndex] = struct{}{}
	}

	unmatchedBank := make([]UnmatchedRecord, 0, bank.Len()-len(matches))
	for i := 0; i < bank.Len(); i++ {
		if _, ok := claimedBank[i]; !ok {
			unmatchedBank = append(unmatchedBank, UnmatchedRecord{Role: models.RoleBank, Index: i})
		}
	}

	unmatchedLedger := make([]UnmatchedRecord, 0, ledger.Len()-len(matches))
	for j := 0; j < ledger.Len(); j++ {
		if _, ok := claimedLedger[j]; !ok {
			unmatchedLedger = append(unmatchedLedger, UnmatchedRecord{Role: models.RoleLedger, Index: j})
		}
	}

	return unmatchedBank, unmatchedLedger
}
