package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"warble/internal/logging"
	"warble/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "warble.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("fetch complete", logging.String("external_id", "abc123"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "fetch complete") {
		t.Fatalf("expected message in log, got: %q", string(data))
	}
	if !strings.Contains(string(data), "external_id=abc123") {
		t.Fatalf("expected attr in log, got: %q", string(data))
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestComponentLoggerPrefix(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "warble.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logging.NewComponentLogger(logger, "workspace").Info("released")

	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "[workspace]") {
		t.Fatalf("expected component prefix, got: %q", string(data))
	}
}

func TestWithContextAddsRequestFields(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "warble.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithJobID(ctx, 42)

	logging.WithContext(ctx, logger).Info("resolved")

	data, _ := os.ReadFile(logPath)
	for _, want := range []string{`"request_id":"req-1"`, `"session_id":"sess-1"`, `"job_id":42`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in output, got: %q", want, string(data))
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
