package aligner

import (
	"testing"

	"ledger-reconciliation-service/pkg/errors"
)

func TestAlignMatchedIgnoresOrder(t *testing.T) {
	bank := []string{"Trans Date", "Narration", "Credit"}
	ledger := []string{"Credit", "Trans Date", "Narration"}

	result := Align(bank, ledger)
	if result.Status != StatusMatched {
		t.Errorf("Expected matched status for reordered headers, got %v", result.Status)
	}
	if err := result.MismatchError(); err != nil {
		t.Errorf("Expected nil mismatch error, got %v", err)
	}
}

func TestAlignTrimsBeforeComparing(t *testing.T) {
	result := Align([]string{" Credit "}, []string{"Credit"})
	if result.Status != StatusMatched {
		t.Errorf("Expected whitespace differences to be ignored, got %v", result.Status)
	}
}

func TestAlignMismatchWithSuggestions(t *testing.T) {
	bank := []string{"Trans Date", "Narration", "Credit Amount"}
	ledger := []string{"Trans Date", "Narration", "Credit Amt"}

	result := Align(bank, ledger)
	if result.Status != StatusMismatched {
		t.Fatalf("Expected mismatched status, got %v", result.Status)
	}

	suggestions, ok := result.MissingFromLedger["Credit Amount"]
	if !ok {
		t.Fatal("Expected suggestions for the bank-only header")
	}
	if len(suggestions) == 0 || suggestions[0].Header != "Credit Amt" {
		t.Errorf("Expected the near-identical header ranked first, got %v", suggestions)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Score > suggestions[i-1].Score {
			t.Errorf("Expected descending scores, got %v", suggestions)
		}
	}

	err := result.MismatchError()
	if err == nil {
		t.Fatal("Expected a mismatch error")
	}
	if err.Code != errors.CodeHeaderMismatch {
		t.Errorf("Expected header mismatch code, got %v", err.Code)
	}
	if err.IsFatal() {
		t.Error("Expected header mismatch to be reported non-fatal")
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Credit", "credit"); got != 1.0 {
		t.Errorf("Expected case-insensitive identity to score 1.0, got %f", got)
	}
	if got := Similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("Expected fully dissimilar strings to score 0.0, got %f", got)
	}
	mid := Similarity("Credit Amount", "Credit Amt")
	if mid <= 0.0 || mid >= 1.0 {
		t.Errorf("Expected partial similarity strictly between 0 and 1, got %f", mid)
	}
}

func TestSelectKeysDefaultsToSharedColumns(t *testing.T) {
	bank := []string{"Trans Date", "Narration", "Credit", "Branch"}
	ledger := []string{"Credit", "Trans Date", "Narration", "Cost Center"}

	keys, err := SelectKeys(bank, ledger, nil)
	if err != nil {
		t.Fatalf("SelectKeys failed: %v", err)
	}

	expected := []string{"Trans Date", "Narration", "Credit"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d keys, got %v", len(expected), keys)
	}
	for i, k := range expected {
		if keys[i] != k {
			t.Errorf("Expected key %q at position %d (bank order), got %q", k, i, keys[i])
		}
	}
}

func TestSelectKeysExplicit(t *testing.T) {
	bank := []string{"Trans Date", "Narration", "Credit"}
	ledger := []string{"Trans Date", "Narration", "Credit"}

	keys, err := SelectKeys(bank, ledger, []string{" Credit ", "Trans Date"})
	if err != nil {
		t.Fatalf("SelectKeys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "Credit" || keys[1] != "Trans Date" {
		t.Errorf("Expected explicit keys in given order, got %v", keys)
	}
}

func TestSelectKeysExplicitMissingColumn(t *testing.T) {
	bank := []string{"Trans Date", "Credit"}
	ledger := []string{"Trans Date", "Credit"}

	_, err := SelectKeys(bank, ledger, []string{"Trans Date", "Reference"})
	if err == nil {
		t.Fatal("Expected an error for an absent key column")
	}
	reconcilerErr, ok := errors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected a ReconcilerError, got %T", err)
	}
	if reconcilerErr.Code != errors.CodeInvalidKey {
		t.Errorf("Expected invalid key code, got %v", reconcilerErr.Code)
	}
}

func TestSelectKeysNoCommonColumns(t *testing.T) {
	_, err := SelectKeys([]string{"A", "B"}, []string{"C", "D"}, nil)
	if err == nil {
		t.Fatal("Expected an error when no columns are shared")
	}
	reconcilerErr, ok := errors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected a ReconcilerError, got %T", err)
	}
	if reconcilerErr.Code != errors.CodeNoCommonColumns {
		t.Errorf("Expected no common columns code, got %v", reconcilerErr.Code)
	}
}
