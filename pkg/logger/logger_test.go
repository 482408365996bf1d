package logger

import (
	"context"
	"testing"
)

func TestInitLevels(t *testing.T) {
	// Init should not panic for any known or unknown level/format combo.
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		for _, format := range []string{"json", "text", ""} {
			Init(&Config{Level: level, Format: format})
		}
	}
}

func TestWithContextExtractsValues(t *testing.T) {
	Init(&Config{Level: "info", Format: "text"})

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TenantKey, "cca")
	ctx = WithContract(ctx, "contract-42")

	// The logger is opaque; this exercises the extraction paths and the
	// nil-safety of missing keys.
	if l := WithContext(ctx); l == nil {
		t.Fatal("Expected a logger")
	}
	if l := WithContext(context.Background()); l == nil {
		t.Fatal("Expected a logger for empty context")
	}

	Info(ctx, "test message", "extra", "value")
	Debug(ctx, "debug message")
	Warn(ctx, "warn message")
	Error(ctx, "error message")
}
