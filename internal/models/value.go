package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind distinguishes the three canonical forms a cell can normalize to.
type ValueKind int

const (
	// KindEmpty is the normalized form of a blank cell. Empty never
	// candidate-matches any other value, including another Empty.
	KindEmpty ValueKind = iota
	// KindNumber is a decimal numeric value; "12" and "12.00" normalize to
	// the same KindNumber value.
	KindNumber
	// KindText is a case-folded, trimmed, separator-stripped string.
	KindText
)

// Value is the canonical, comparable form of a raw cell value.
type Value struct {
	Kind   ValueKind
	Number decimal.Decimal
	Text   string
}

// Normalize canonicalizes a raw cell value for comparison.
//
// Numeric-looking input (after stripping whitespace and grouping separators)
// becomes a decimal number, so "10,000.00", "10000" and "10000.00" are judged
// equal. Anything else becomes case-folded trimmed text; malformed
// numeric-looking input degrades to text rather than failing. Blank input
// becomes Empty. Normalization is pure, deterministic and idempotent.
func Normalize(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{Kind: KindEmpty}
	}

	// Grouping separators and interior spaces are stripped only for the
	// numeric attempt, so text values keep their internal spacing.
	numeric := strings.ReplaceAll(trimmed, ",", "")
	numeric = strings.ReplaceAll(numeric, " ", "")
	if d, err := decimal.NewFromString(numeric); err == nil {
		return Value{Kind: KindNumber, Number: d}
	}

	text := strings.ToLower(strings.ReplaceAll(trimmed, ",", ""))
	return Value{Kind: KindText, Text: text}
}

// IsEmpty reports whether the value is the distinguished Empty form.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Equal reports whether two normalized values are candidate-equal.
// Empty equals nothing, so blank cells never produce mass false matches.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindEmpty:
		return false
	case KindNumber:
		return v.Number.Equal(other.Number)
	default:
		return v.Text == other.Text
	}
}

// String returns the canonical string form of the value. Re-normalizing this
// form yields the same Value.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return v.Number.String()
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// keyPartSeparator keeps multi-column keys unambiguous when concatenated.
const keyPartSeparator = "\x1f"

// MatchKey is the ordered tuple of normalized values over the selected key
// columns for one record. Two records are candidate-equal iff their MatchKeys
// are equal.
type MatchKey struct {
	Parts []Value
}

// BuildKey computes the MatchKey of a record over the given key columns.
func BuildKey(rec Record, keyColumns []string) MatchKey {
	parts := make([]Value, len(keyColumns))
	for i, col := range keyColumns {
		parts[i] = Normalize(rec.Get(col))
	}
	return MatchKey{Parts: parts}
}

// HasEmpty reports whether any key component normalized to Empty. Such keys
// are excluded from matching entirely.
func (k MatchKey) HasEmpty() bool {
	for _, p := range k.Parts {
		if p.IsEmpty() {
			return true
		}
	}
	return false
}

// String encodes the key canonically for use as a grouping index. Keys with
// an Empty component must be excluded before grouping; their encodings are
// not meaningful.
func (k MatchKey) String() string {
	parts := make([]string, len(k.Parts))
	for i, p := range k.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, keyPartSeparator)
}

// Equal reports component-wise candidate equality of two keys.
func (k MatchKey) Equal(other MatchKey) bool {
	if len(k.Parts) != len(other.Parts) {
		return false
	}
	for i := range k.Parts {
		if !k.Parts[i].Equal(other.Parts[i]) {
			return false
		}
	}
	return true
}
