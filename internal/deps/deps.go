// Package deps reports the availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"clipper/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the tool list from configuration. The prober is
// optional because a failed probe degrades to a conservative re-encode
// instead of failing the run.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "downloader",
			Command:     cfg.Downloader.Binary,
			Description: "acquires video segments from source sites",
		},
		{
			Name:        "transcoder",
			Command:     cfg.Transcode.FFmpegBinary,
			Description: "trims and re-encodes acquired segments",
		},
		{
			Name:        "prober",
			Command:     cfg.Transcode.FFprobeBinary,
			Description: "inspects downloaded artifacts",
			Optional:    true,
		},
	}
}

// Check evaluates the configured requirements against the PATH.
func Check(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
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
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
