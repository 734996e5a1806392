package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestReconcilerError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeInvalidFormat,
			message:    "invalid format",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "validation error",
			category:   CategoryValidation,
			code:       CodeInvalidKey,
			message:    "invalid key",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeMissingConfig,
			message:    "missing config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "internal error",
			category:   CategoryInternal,
			code:       CodeUnexpectedError,
			message:    "unexpected",
			cause:      errors.New("boom"),
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *ReconcilerError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Error("expected wrapped cause to be reachable via errors.Is")
			}
		})
	}
}

func TestErrorMessageIncludesSuggestion(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "file not found").
		WithSuggestion("check the path")

	if err.Error() != "file not found (suggestion: check the path)" {
		t.Errorf("unexpected error string: %q", err.Error())
	}
}

func TestWithContext(t *testing.T) {
	err := New(CategoryParse, CodeInvalidFormat, "bad data").
		WithContext("file", "bank.csv").
		WithContext("row", 12)

	if err.Context["file"] != "bank.csv" {
		t.Errorf("expected file context, got %v", err.Context["file"])
	}
	if err.Context["row"] != 12 {
		t.Errorf("expected row context, got %v", err.Context["row"])
	}
}

func TestIsFatal(t *testing.T) {
	if HeaderMismatchError(nil, []string{"Credit"}).IsFatal() {
		t.Error("expected header mismatch to be non-fatal")
	}
	if !InvalidKeyError([]string{"Reference"}).IsFatal() {
		t.Error("expected invalid key to be fatal")
	}
	if !NoCommonColumnsError(nil, nil).IsFatal() {
		t.Error("expected no common columns to be fatal")
	}
}

func TestFileErrorConstructor(t *testing.T) {
	err := FileError(CodeUnsupportedFormat, "report.pdf", nil)

	if err.Category != CategoryFile || err.Code != CodeUnsupportedFormat {
		t.Errorf("unexpected taxonomy: %s/%s", err.Category, err.Code)
	}
	if err.Context["file_path"] != "report.pdf" {
		t.Errorf("expected file path context, got %v", err.Context["file_path"])
	}
	if err.Suggestion == "" {
		t.Error("expected a suggestion to be set")
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := InvalidKeyError([]string{"Reference"})
	wrapped := fmt.Errorf("run failed: %w", inner)

	got, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("expected to extract the ReconcilerError from the chain")
	}
	if got.Code != CodeInvalidKey {
		t.Errorf("expected invalid key code, got %s", got.Code)
	}

	if _, ok := AsReconcilerError(errors.New("plain")); ok {
		t.Error("expected no extraction from a plain error")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	original := FileError(CodeFileNotFound, "bank.csv", nil)
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "ignored"); got != original {
		t.Error("expected an existing ReconcilerError to pass through unchanged")
	}

	plain := errors.New("plain")
	got := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if got.Category != CategoryInternal || got.Cause != plain {
		t.Errorf("expected plain error wrapped as internal, got %+v", got)
	}

	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "nil") != nil {
		t.Error("expected nil in, nil out")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryFile, CodeFileNotFound, "nothing") != nil {
		t.Error("expected wrapping nil to return nil")
	}
}
