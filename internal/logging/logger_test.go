package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quaver/internal/logging"
	"quaver/internal/services"
)

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scoped := logging.NewComponentLogger(logger, "assembler")
	scoped.Info("songs ordered", logging.Int("count", 12), logging.String("root", "/music/albums"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, "INFO assembler: songs ordered") {
		t.Fatalf("expected component prefix in %q", line)
	}
	if !strings.Contains(line, "count=12") {
		t.Fatalf("expected count attribute in %q", line)
	}
	if !strings.Contains(line, "root=/music/albums") {
		t.Fatalf("expected root attribute in %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("planned", logging.String("path", "Radiohead/OK Computer/Airbag"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `path="Radiohead/OK Computer/Airbag"`) {
		t.Fatalf("expected quoted value in %q", string(data))
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("lookup failed", logging.String("release", "abc"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "lookup failed" {
		t.Fatalf("expected msg key, got %v", payload)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestResolveFormatExplicitValues(t *testing.T) {
	if got := logging.ResolveFormat("json"); got != "json" {
		t.Fatalf("expected json, got %q", got)
	}
	if got := logging.ResolveFormat("Console"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
}

func TestWithContextAttachesFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithGroup(context.Background(), "/music/compilations/mix")
	ctx = services.WithStage(ctx, "plan")
	logging.WithContext(ctx, logger).Info("stage started")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "group=/music/compilations/mix") {
		t.Fatalf("expected group field in %q", line)
	}
	if !strings.Contains(line, "stage=plan") {
		t.Fatalf("expected stage field in %q", line)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Info("this should vanish")
	logger.Error("so should this", logging.Error(nil))
}
