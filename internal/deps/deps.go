package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"warble/internal/config"
)

// Requirement defines an external dependency Warble relies on.
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

// Check evaluates every external binary the daemon needs: the yt-dlp
// resolver and the ffmpeg binary it shells out to for audio extraction.
func Check(cfg *config.Config) []Status {
	statuses := CheckBinaries([]Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.ResolverBinary(),
			Description: "Resolves searches and downloads audio",
		},
	})
	return append(statuses, CheckFFmpegForResolver(cfg.ResolverBinary()))
}

// AllAvailable reports whether every non-optional dependency resolved.
func AllAvailable(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}

// Describe renders a one-line summary of the missing dependencies, empty
// when everything resolved.
func Describe(statuses []Status) string {
	var missing []string
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	return strings.Join(missing, "; ")
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
