// Package aligner compares the two datasets' column label sets and selects
// the join key columns.
//
// Header alignment is advisory: when the sets differ under required checking
// it reports the mismatch with ranked counterpart suggestions, but never
// aborts on its own. Key selection is where missing columns become fatal.
package aligner

import (
	"sort"
	"strings"

	"ledger-reconciliation-service/internal/models"
	"ledger-reconciliation-service/pkg/errors"
)

// AlignmentStatus is the outcome of a header comparison.
type AlignmentStatus string

const (
	// StatusMatched means both datasets carry the same header set. Order
	// differences alone never constitute a mismatch.
	StatusMatched AlignmentStatus = "matched"
	// StatusMismatched means at least one header is present on one side
	// only. Reported, non-fatal; the caller decides whether to proceed.
	StatusMismatched AlignmentStatus = "mismatched"
)

// Suggestion ranks a candidate counterpart for a header missing from the
// other side. Higher scores are more similar.
type Suggestion struct {
	Header string
	Score  float64
}

// AlignmentResult carries the comparison outcome plus, per header present on
// one side only, a ranked list of candidates from the other side.
type AlignmentResult struct {
	Status AlignmentStatus
	// MissingFromLedger maps bank-side headers absent from the ledger to
	// ranked ledger-side candidates.
	MissingFromLedger map[string][]Suggestion
	// MissingFromBank maps ledger-side headers absent from the bank side to
	// ranked bank-side candidates.
	MissingFromBank map[string][]Suggestion
}

// Align trims and compares the two header sets. On mismatch it proposes
// counterpart alignments by similarity score, ties broken by shorter edit
// distance and then lexicographic order. The suggestions are advisory output
// for the caller, never auto-applied.
func Align(bankHeaders, ledgerHeaders []string) *AlignmentResult {
	bank := models.TrimHeaders(bankHeaders)
	ledger := models.TrimHeaders(ledgerHeaders)
	bankSet := models.HeaderSet(bank)
	ledgerSet := models.HeaderSet(ledger)

	result := &AlignmentResult{
		Status:            StatusMatched,
		MissingFromLedger: make(map[string][]Suggestion),
		MissingFromBank:   make(map[string][]Suggestion),
	}

	for _, h := range bank {
		if _, ok := ledgerSet[h]; !ok {
			result.Status = StatusMismatched
			result.MissingFromLedger[h] = rankCandidates(h, ledger)
		}
	}
	for _, h := range ledger {
		if _, ok := bankSet[h]; !ok {
			result.Status = StatusMismatched
			result.MissingFromBank[h] = rankCandidates(h, bank)
		}
	}

	return result
}

// MismatchError converts a mismatched alignment into its reported, non-fatal
// error form. Returns nil for a matched alignment.
func (r *AlignmentResult) MismatchError() *errors.ReconcilerError {
	if r.Status == StatusMatched {
		return nil
	}
	missingFromLedger := make([]string, 0, len(r.MissingFromLedger))
	for h := range r.MissingFromLedger {
		missingFromLedger = append(missingFromLedger, h)
	}
	missingFromBank := make([]string, 0, len(r.MissingFromBank))
	for h := range r.MissingFromBank {
		missingFromBank = append(missingFromBank, h)
	}
	sort.Strings(missingFromLedger)
	sort.Strings(missingFromBank)
	return errors.HeaderMismatchError(missingFromBank, missingFromLedger)
}

// rankCandidates orders the other side's headers by similarity to the target,
// most similar first.
func rankCandidates(target string, candidates []string) []Suggestion {
	suggestions := make([]Suggestion, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		suggestions = append(suggestions, Suggestion{
			Header: c,
			Score:  Similarity(target, c),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		di := EditDistance(target, suggestions[i].Header)
		dj := EditDistance(target, suggestions[j].Header)
		if di != dj {
			return di < dj
		}
		return suggestions[i].Header < suggestions[j].Header
	})

	return suggestions
}

// SelectKeys determines the join key columns.
//
// An explicit column list is used verbatim after trimming; any listed column
// absent from either header set is an InvalidKey error. Without an explicit
// list the key is the ordered intersection of both header sets, in bank-side
// order; an empty intersection is a NoCommonColumns error. Both conditions
// are fatal to the run.
func SelectKeys(bankHeaders, ledgerHeaders, explicit []string) ([]string, error) {
	bank := models.TrimHeaders(bankHeaders)
	ledger := models.TrimHeaders(ledgerHeaders)
	bankSet := models.HeaderSet(bank)
	ledgerSet := models.HeaderSet(ledger)

	if len(explicit) > 0 {
		keys := make([]string, 0, len(explicit))
		var missing []string
		for _, col := range explicit {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			_, inBank := bankSet[col]
			_, inLedger := ledgerSet[col]
			if !inBank || !inLedger {
				missing = append(missing, col)
				continue
			}
			keys = append(keys, col)
		}
		if len(missing) > 0 {
			return nil, errors.InvalidKeyError(missing)
		}
		return keys, nil
	}

	var keys []string
	seen := make(map[string]struct{})
	for _, h := range bank {
		if _, ok := ledgerSet[h]; !ok {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		keys = append(keys, h)
	}
	if len(keys) == 0 {
		return nil, errors.NoCommonColumnsError(bank, ledger)
	}
	return keys, nil
}
