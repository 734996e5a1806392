package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"ledger-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Could not write temp file: %v", err)
	}
	return path
}

func TestReadRawRowsCSV(t *testing.T) {
	path := writeTempFile(t, "bank.csv", "Trans Date,Narration,Credit\n2024-01-15,NEFT TX001,\"1,200.00\"\n2024-01-16,Cheque\n")

	rows, err := NewFileReader(nil).ReadRawRows(path)
	if err != nil {
		t.Fatalf("ReadRawRows failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[1][2] != "1,200.00" {
		t.Errorf("Expected quoted field preserved, got %q", rows[1][2])
	}
	// Ragged rows are allowed; padding happens downstream.
	if len(rows[2]) != 2 {
		t.Errorf("Expected short row kept as-is, got %v", rows[2])
	}
}

func TestReadRawRowsCustomDelimiter(t *testing.T) {
	path := writeTempFile(t, "ledger.tsv", "ID\tDebit\nTX1\t100\n")

	rows, err := NewFileReader(&Config{Delimiter: '\t'}).ReadRawRows(path)
	if err != nil {
		t.Fatalf("ReadRawRows failed: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "100" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestReadRawRowsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.xlsx")

	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"ID", "Credit"}); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"TX1", "100"}); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	rows, err := NewFileReader(nil).ReadRawRows(path)
	if err != nil {
		t.Fatalf("ReadRawRows failed: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "ID" || rows[1][1] != "100" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestReadRawRowsMissingFile(t *testing.T) {
	_, err := NewFileReader(nil).ReadRawRows(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	reconcilerErr, ok := errors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected a ReconcilerError, got %T", err)
	}
	if reconcilerErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected file not found code, got %v", reconcilerErr.Code)
	}
}

func TestReadRawRowsUnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "report.pdf", "%PDF-1.4")

	_, err := NewFileReader(nil).ReadRawRows(path)
	if err == nil {
		t.Fatal("Expected an error for an unsupported extension")
	}
	reconcilerErr, ok := errors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected a ReconcilerError, got %T", err)
	}
	if reconcilerErr.Code != errors.CodeUnsupportedFormat {
		t.Errorf("Expected unsupported format code, got %v", reconcilerErr.Code)
	}
}
