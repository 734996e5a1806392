package matcher

import (
	"testing"

	"ledger-reconciliation-service/internal/models"
)

var testKeyColumns = []string{"ID", "Amount"}

func makeDataset(role models.DatasetRole, rows ...[2]string) *models.Dataset {
	records := make([]models.Record, len(rows))
	for i, r := range rows {
		records[i] = models.Record{"ID": r[0], "Amount": r[1]}
	}
	return models.NewDataset(role, []string{"ID", "Amount"}, records)
}

func TestMatchExactPairs(t *testing.T) {
	bank := makeDataset(models.RoleBank,
		[2]string{"TX1", "100"},
		[2]string{"TX2", "250"},
		[2]string{"TX3", "75"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"TX2", "250.00"},
		[2]string{"TX1", "100.00"},
	)

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}

	// Bank rows are visited in ascending order.
	if matches[0].BankIndex != 0 || matches[0].LedgerIndex != 1 {
		t.Errorf("Expected TX1 pair (0,1), got (%d,%d)", matches[0].BankIndex, matches[0].LedgerIndex)
	}
	if matches[1].BankIndex != 1 || matches[1].LedgerIndex != 0 {
		t.Errorf("Expected TX2 pair (1,0), got (%d,%d)", matches[1].BankIndex, matches[1].LedgerIndex)
	}
}

func TestMatchExclusivity(t *testing.T) {
	// Three bank duplicates, one ledger counterpart: exactly one match.
	bank := makeDataset(models.RoleBank,
		[2]string{"TX1", "100"},
		[2]string{"TX1", "100"},
		[2]string{"TX1", "100"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"TX1", "100"},
	)

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].BankIndex != 0 || matches[0].LedgerIndex != 0 {
		t.Errorf("Expected earliest bank row to claim the ledger row, got (%d,%d)",
			matches[0].BankIndex, matches[0].LedgerIndex)
	}

	unmatchedBank, unmatchedLedger := Unmatched(bank, ledger, matches)
	if len(unmatchedBank) != 2 {
		t.Errorf("Expected 2 unmatched bank rows, got %d", len(unmatchedBank))
	}
	if len(unmatchedLedger) != 0 {
		t.Errorf("Expected 0 unmatched ledger rows, got %d", len(unmatchedLedger))
	}
}

func TestMatchDuplicateGroupPairsInRowOrder(t *testing.T) {
	// One bank row, four ledger duplicates: min(1,4) matches, earliest
	// ledger row claimed.
	bank := makeDataset(models.RoleBank,
		[2]string{"TX9", "500"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"TX9", "500"},
		[2]string{"TX9", "500"},
		[2]string{"TX9", "500"},
		[2]string{"TX9", "500"},
	)

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].LedgerIndex != 0 {
		t.Errorf("Expected earliest available ledger row 0, got %d", matches[0].LedgerIndex)
	}

	_, unmatchedLedger := Unmatched(bank, ledger, matches)
	if len(unmatchedLedger) != 3 {
		t.Errorf("Expected 3 unmatched ledger rows, got %d", len(unmatchedLedger))
	}
	for i, u := range unmatchedLedger {
		if u.Index != i+1 {
			t.Errorf("Expected unmatched ledger rows in original order, got index %d at position %d", u.Index, i)
		}
	}
}

func TestMatchBalancedDuplicates(t *testing.T) {
	// 2x2 duplicate group resolves to two pairs in row order, never a
	// cross product.
	bank := makeDataset(models.RoleBank,
		[2]string{"TX5", "20"},
		[2]string{"TX5", "20"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"TX5", "20"},
		[2]string{"TX5", "20"},
	)

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].BankIndex != 0 || matches[0].LedgerIndex != 0 {
		t.Errorf("Expected pair (0,0) first, got (%d,%d)", matches[0].BankIndex, matches[0].LedgerIndex)
	}
	if matches[1].BankIndex != 1 || matches[1].LedgerIndex != 1 {
		t.Errorf("Expected pair (1,1) second, got (%d,%d)", matches[1].BankIndex, matches[1].LedgerIndex)
	}
}

func TestMatchEmptyKeyComponentsExcluded(t *testing.T) {
	bank := makeDataset(models.RoleBank,
		[2]string{"", "100"},
		[2]string{"TX1", ""},
		[2]string{"TX2", "50"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"", "100"},
		[2]string{"TX1", ""},
		[2]string{"TX2", "50"},
	)

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)

	if len(matches) != 1 {
		t.Fatalf("Expected only the complete-key pair to match, got %d matches", len(matches))
	}
	if matches[0].BankIndex != 2 || matches[0].LedgerIndex != 2 {
		t.Errorf("Expected pair (2,2), got (%d,%d)", matches[0].BankIndex, matches[0].LedgerIndex)
	}

	unmatchedBank, unmatchedLedger := Unmatched(bank, ledger, matches)
	if len(unmatchedBank) != 2 || len(unmatchedLedger) != 2 {
		t.Errorf("Expected the empty-key rows unmatched on both sides, got %d and %d",
			len(unmatchedBank), len(unmatchedLedger))
	}
}

func TestMatchNumericEquivalence(t *testing.T) {
	bank := makeDataset(models.RoleBank, [2]string{"TX1", "1,200.00"})
	ledger := makeDataset(models.RoleLedger, [2]string{"tx1", "1200"})

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)
	if len(matches) != 1 {
		t.Fatalf("Expected normalized forms to match, got %d matches", len(matches))
	}
}

func TestMatchDeterminism(t *testing.T) {
	bank := makeDataset(models.RoleBank,
		[2]string{"TX1", "10"},
		[2]string{"TX1", "10"},
		[2]string{"TX2", "20"},
		[2]string{"TX3", "30"},
	)
	ledger := makeDataset(models.RoleLedger,
		[2]string{"TX3", "30"},
		[2]string{"TX1", "10"},
		[2]string{"TX1", "10"},
	)

	engine := NewEngine(testKeyColumns)
	first := engine.Match(bank, ledger)
	for run := 0; run < 10; run++ {
		again := engine.Match(bank, ledger)
		if len(again) != len(first) {
			t.Fatalf("Match count changed between runs: %d vs %d", len(first), len(again))
		}
		for i := range first {
			if first[i].BankIndex != again[i].BankIndex || first[i].LedgerIndex != again[i].LedgerIndex {
				t.Fatalf("Pairing changed between runs at %d: (%d,%d) vs (%d,%d)", i,
					first[i].BankIndex, first[i].LedgerIndex, again[i].BankIndex, again[i].LedgerIndex)
			}
		}
	}
}

func TestMatchNoCandidates(t *testing.T) {
	bank := makeDataset(models.RoleBank, [2]string{"TX1", "100"})
	ledger := makeDataset(models.RoleLedger, [2]string{"TX2", "200"})

	engine := NewEngine(testKeyColumns)
	matches := engine.Match(bank, ledger)
	if len(matches) != 0 {
		t.Fatalf("Expected no matches, got %d", len(matches))
	}

	unmatchedBank, unmatchedLedger := Unmatched(bank, ledger, matches)
	if len(unmatchedBank) != 1 || len(unmatchedLedger) != 1 {
		t.Errorf("Expected both rows unmatched, got %d and %d", len(unmatchedBank), len(unmatchedLedger))
	}
}

func TestKeyIndexGrouping(t *testing.T) {
	d := makeDataset(models.RoleLedger,
		[2]string{"TX1", "10"},
		[2]string{"TX2", "20"},
		[2]string{"TX1", "10"},
		[2]string{"", "30"},
	)

	ix := NewKeyIndex(d, testKeyColumns)
	if ix.GroupCount() != 2 {
		t.Errorf("Expected 2 distinct keys, got %d", ix.GroupCount())
	}
	if ix.Skipped() != 1 {
		t.Errorf("Expected 1 skipped row, got %d", ix.Skipped())
	}

	group := ix.Group(ix.Key(0).String())
	if len(group) != 2 || group[0] != 0 || group[1] != 2 {
		t.Errorf("Expected TX1 group [0 2], got %v", group)
	}
}
