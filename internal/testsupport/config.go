package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"kelvin/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The input directory is created so discovery succeeds by default; tests
// covering the missing-directory path remove it themselves.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input_images")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output_images")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	if err := os.MkdirAll(cfgVal.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("create input dir: %v", err)
	}

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProcessingIndex overrides the decoder processing index on the test config.
func WithProcessingIndex(index int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Decoder.ProcessingIndex = index
	}
}

// WithExifToolDisabled turns off metadata migration on the test config.
func WithExifToolDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ExifTool.Enabled = false
	}
}
