package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/idea_store.json",
		Op:   "write",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/idea_store.json") {
		t.Errorf("StorageError.Error() should contain path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("invalid JSON")
	err := &ParseError{
		Source: "idea-envelope",
		Key:    "ideas",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "parse error") {
		t.Errorf("ParseError.Error() should contain 'parse error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "idea-envelope") {
		t.Errorf("ParseError.Error() should contain source, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ParseError.Unwrap() should return original error")
	}
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Path: "ideas[2].title", Reason: "expected string"}
	want := "schema error at ideas[2].title: expected string"
	if got := err.Error(); got != want {
		t.Errorf("SchemaError.Error() = %q, want %q", got, want)
	}

	var target *SchemaError
	wrapped := fmt.Errorf("envelope rejected: %w", err)
	if !errors.As(wrapped, &target) || target.Path != "ideas[2].title" {
		t.Errorf("errors.As() did not find SchemaError in %v", wrapped)
	}
}

func TestTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want []string
	}{
		{
			name: "with status",
			err:  &TransportError{Op: "/api/search", Status: 502, Err: errors.New("Request failed")},
			want: []string{"/api/search", "status 502", "Request failed"},
		},
		{
			name: "without status",
			err:  &TransportError{Op: "read", Err: errors.New("connection reset")},
			want: []string{"[read]", "connection reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("TransportError.Error() = %q, want it to contain %q", msg, w)
				}
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("TransportError.Unwrap() should return original error")
			}
		})
	}

	if strings.Contains((&TransportError{Op: "read", Err: errors.New("x")}).Error(), "status") {
		t.Error("TransportError.Error() should omit a zero status")
	}
}

func TestPersistenceError(t *testing.T) {
	originalErr := errors.New("database is locked")
	err := &PersistenceError{Op: "recycle", Fingerprint: "abc123", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "recycle") || !strings.Contains(errorMsg, "abc123") {
		t.Errorf("PersistenceError.Error() should contain op and fingerprint, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("PersistenceError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/ideas.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}

func TestIsAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "abort from cancelled context", err: abortError(ctx), want: true},
		{name: "wrapped abort", err: fmt.Errorf("search: %w", abortError(ctx)), want: true},
		{name: "transport failure", err: &TransportError{Op: "read", Err: errors.New("reset")}, want: false},
		{name: "plain context error", err: context.Canceled, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAbort(tt.err); got != tt.want {
				t.Errorf("IsAbort(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if !errors.Is(abortError(ctx), context.Canceled) {
		t.Error("abort error should also match context.Canceled")
	}
}
