package deps_test

import (
	"testing"

	"kelvin/internal/config"
	"kelvin/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Missing", Command: "kelvin-test-no-such-binary"},
		{Name: "Unconfigured", Command: "  "},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if status.Available {
			t.Errorf("%s should be unavailable", status.Name)
		}
		if status.Detail == "" {
			t.Errorf("%s should carry a detail message", status.Name)
		}
	}
}

func TestCheckBinariesFindsShell(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{{Name: "Shell", Command: "sh"}})
	if !statuses[0].Available {
		t.Fatalf("expected sh to be available: %+v", statuses[0])
	}
}

func TestFromConfigMarksDisabledExiftoolOptional(t *testing.T) {
	cfg := config.Default()
	cfg.ExifTool.Enabled = false
	reqs := deps.FromConfig(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional {
		t.Fatal("decoder must be required")
	}
	if !reqs[1].Optional {
		t.Fatal("disabled exiftool should be optional")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []deps.Status{
		{Name: "A", Available: false, Optional: false},
		{Name: "B", Available: false, Optional: true},
		{Name: "C", Available: true},
	}
	missing := deps.MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "A" {
		t.Fatalf("expected only A missing, got %v", missing)
	}
}
