// Package parsers reads tabular sources into raw positional rows.
//
// Format detection is extension-based: .xlsx and .xlsm workbooks are read
// through excelize, delimited extensions through encoding/csv. Legacy binary
// .xls is not supported; convert those exports to .xlsx first. Rows are
// returned positionally, without header interpretation — locating the header
// row is the filter pipeline's job, since real exports often carry report
// titles and account banners above it.
package parsers

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ledger-reconciliation-service/pkg/errors"
	"ledger-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Config holds configuration for reading delimited-text sources.
type Config struct {
	// Delimiter separates fields in text sources. Defaults to ','.
	Delimiter rune
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{Delimiter: ','}
}

// FileReader loads spreadsheet or delimited-text files into raw rows.
type FileReader struct {
	config *Config
	logger logger.Logger
}

// NewFileReader creates a FileReader with the given configuration.
func NewFileReader(config *Config) *FileReader {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	return &FileReader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("file_reader"),
	}
}

// ReadRawRows loads the file at path into an ordered sequence of raw rows.
func (r *FileReader) ReadRawRows(path string) ([][]string, error) {
	r.logger.WithField("file_path", path).Debug("Reading tabular source")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeUnsupportedFormat, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return r.readWorkbook(path)
	case ".csv", ".txt", ".tsv":
		return r.readDelimited(path)
	default:
		return nil, errors.FileError(errors.CodeUnsupportedFormat, path, nil)
	}
}

// readWorkbook reads the first sheet of a workbook into raw rows.
func (r *FileReader) readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, "could not open workbook", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, "could not read sheet "+sheet, err)
	}

	r.logger.WithFields(logger.Fields{
		"file_path": path,
		"sheet":     sheet,
		"rows":      len(rows),
	}).Debug("Workbook loaded")
	return rows, nil
}

// readDelimited reads a delimited-text file into raw rows. Field counts may
// vary between rows; short rows are padded by the header extraction stage.
func (r *FileReader) readDelimited(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileNotFound, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidFormat, path, "malformed delimited row", err)
		}
		rows = append(rows, record)
	}

	r.logger.WithFields(logger.Fields{
		"file_path": path,
		"rows":      len(rows),
	}).Debug("Delimited file loaded")
	return rows, nil
}
