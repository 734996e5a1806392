// Package models defines the core data structures for tabular reconciliation:
// datasets of column-labelled records, normalized cell values, and match keys.
//
// A Dataset is an ordered, immutable sequence of Records ingested from a
// spreadsheet or CSV source. Row order is significant: it is the tie-break
// order for matching. The engine never writes back into a Dataset.
package models

import (
	"strings"
)

// DatasetRole identifies which side of the reconciliation a dataset is on.
type DatasetRole string

const (
	// RoleBank marks the bank statement export (the base record set).
	RoleBank DatasetRole = "bank"
	// RoleLedger marks the reference-side ledger export.
	RoleLedger DatasetRole = "ledger"
)

// String returns the string representation of DatasetRole.
func (r DatasetRole) String() string {
	return string(r)
}

// IsValid checks if the dataset role is valid.
func (r DatasetRole) IsValid() bool {
	return r == RoleBank || r == RoleLedger
}

// Record is a mapping from column label to raw cell value for a single row.
type Record map[string]string

// Get returns the raw cell value for a column, or "" if the column is absent.
func (rec Record) Get(column string) string {
	return rec[column]
}

// IsEmpty reports whether every cell in the record normalizes to Empty.
func (rec Record) IsEmpty() bool {
	for _, raw := range rec {
		if !Normalize(raw).IsEmpty() {
			return false
		}
	}
	return true
}

// JoinedText returns all non-blank cell values joined by single spaces,
// lower-cased. Used by the summary-row filter to search for marker phrases.
func (rec Record) JoinedText(headers []string) string {
	var parts []string
	for _, h := range headers {
		v := strings.TrimSpace(rec[h])
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Dataset is an ordered sequence of records sharing one header set.
type Dataset struct {
	Role    DatasetRole
	Headers []string
	Records []Record
}

// NewDataset creates a Dataset with trimmed headers.
func NewDataset(role DatasetRole, headers []string, records []Record) *Dataset {
	return &Dataset{
		Role:    role,
		Headers: TrimHeaders(headers),
		Records: records,
	}
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// HasHeader reports whether the dataset carries the given column label,
// compared after trimming.
func (d *Dataset) HasHeader(name string) bool {
	name = strings.TrimSpace(name)
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// FindHeader returns the first header whose trimmed, case-folded form equals
// the given label, or "" if none does.
func (d *Dataset) FindHeader(label string) string {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, h := range d.Headers {
		if strings.ToLower(h) == want {
			return h
		}
	}
	return ""
}

// FindHeaderContaining returns the first header whose case-folded form
// contains the given fragment, or "" if none does.
func (d *Dataset) FindHeaderContaining(fragment string) string {
	want := strings.ToLower(strings.TrimSpace(fragment))
	for _, h := range d.Headers {
		if strings.Contains(strings.ToLower(h), want) {
			return h
		}
	}
	return ""
}

// TrimHeaders returns a copy of headers with surrounding whitespace removed.
func TrimHeaders(headers []string) []string {
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
	}
	return trimmed
}

// HeaderSet builds a set from a header slice, trimming each entry.
func HeaderSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	return set
}
