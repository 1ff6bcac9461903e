package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"kelvin/internal/config"
)

// WriteInputFile places a file with the given content in the test config's
// input directory and returns its full path.
func WriteInputFile(t testing.TB, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.InputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input file %s: %v", name, err)
	}
	return path
}
