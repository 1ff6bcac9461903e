package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"kelvin/internal/config"
)

// Requirement defines an external dependency the converter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// FromConfig derives the external tool requirements for the given
// configuration. The radiometric decoder is always required; exiftool only
// matters when metadata migration is enabled.
func FromConfig(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Radiometric decoder",
			Command:     cfg.Decoder.Binary,
			Description: "Converts thermal captures into temperature frames",
		},
	}
	reqs = append(reqs, Requirement{
		Name:        "ExifTool",
		Command:     cfg.ExifTool.Binary,
		Description: "Copies capture metadata onto rasters",
		Optional:    !cfg.ExifTool.Enabled,
	})
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are
// unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
