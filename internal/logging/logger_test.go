package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kelvin/internal/config"
	"kelvin/internal/logging"
	"kelvin/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("converted", logging.String("file", "DJI_0001_T.JPG"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "kelvin.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "DJI_0001_T.JPG") {
		t.Fatalf("expected log file to contain the file attribute, got %q", string(data))
	}
	if !strings.Contains(string(data), `"msg":"converted"`) {
		t.Fatalf("expected json msg key, got %q", string(data))
	}
}

func TestJSONFormatRewritesRecordKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "keys.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("scanning input directory")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"ts":"`) {
		t.Fatalf("expected ts key, got %q", out)
	}
	if !strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("expected lowercase level, got %q", out)
	}
	if !strings.Contains(out, `"src":"logger_test.go:`) {
		t.Fatalf("expected src as file:line at debug level, got %q", out)
	}
}

func TestConsoleFormatIncludesComponentHeader(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.With(logging.String(logging.FieldComponent, "batch")).Info("starting conversion")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[batch]") {
		t.Fatalf("expected [batch] component header, got %q", out)
	}
	if !strings.Contains(out, "starting conversion") {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithFile(ctx, "DJI_0002_T.JPG")
	logging.WithContext(ctx, logger).Info("decode complete")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"run_id":"run-42"`) {
		t.Fatalf("expected run_id field, got %q", out)
	}
	if !strings.Contains(out, `"file":"DJI_0002_T.JPG"`) {
		t.Fatalf("expected file field, got %q", out)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
