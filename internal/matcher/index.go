package matcher

import (
	"ledger-reconciliation-service/internal/models"
)

// KeyIndex groups a dataset's row indices by their encoded MatchKey,
// preserving original row order within each group. Grouping by key bounds the
// candidate enumeration to the duplicate groups themselves instead of
// materializing a full cross product.
type KeyIndex struct {
	// groups maps encoded keys to row indices in ascending order.
	groups map[string][]int
	// keys holds the per-row MatchKey; rows with an Empty key component are
	// recorded but never grouped.
	keys []models.MatchKey
	// skipped counts rows excluded for carrying an Empty key component.
	skipped int
}

// NewKeyIndex computes the MatchKey of every row over the key columns and
// groups the usable ones.
func NewKeyIndex(d *models.Dataset, keyColumns []string) *KeyIndex {
	ix := &KeyIndex{
		groups: make(map[string][]int),
		keys:   make([]models.MatchKey, d.Len()),
	}
	for i, rec := range d.Records {
		key := models.BuildKey(rec, keyColumns)
		ix.keys[i] = key
		if key.HasEmpty() {
			ix.skipped++
			continue
		}
		encoded := key.String()
		ix.groups[encoded] = append(ix.groups[encoded], i)
	}
	return ix
}

// Key returns the MatchKey computed for a row.
func (ix *KeyIndex) Key(row int) models.MatchKey {
	return ix.keys[row]
}

// Group returns the row indices sharing an encoded key, in row order.
func (ix *KeyIndex) Group(encoded string) []int {
	return ix.groups[encoded]
}

// Skipped returns how many rows were excluded for Empty key components.
func (ix *KeyIndex) Skipped() int {
	return ix.skipped
}

// GroupCount returns the number of distinct usable keys.
func (ix *KeyIndex) GroupCount() int {
	return len(ix.groups)
}
