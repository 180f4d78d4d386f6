package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"warble/internal/logging"
)

// SweepResult contains the outcome of a workspace sweep.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a directory path with its cleanup error.
type SweepError struct {
	Path  string
	Error error
}

// SweepOrphans removes every workspace directory under base. It runs once at
// daemon startup to reclaim workspaces orphaned by a crash; no fetch jobs
// are in flight at that point, so everything with the workspace prefix is
// garbage.
func SweepOrphans(base string, logger *slog.Logger) SweepResult {
	return sweep(base, logger, func(os.DirEntry) bool { return true }, "orphaned")
}

// SweepStale removes workspace directories older than maxAge. The runtime
// janitor uses it to reclaim leaks from failed deletions.
func SweepStale(base string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	cutoff := time.Now().Add(-maxAge)
	return sweep(base, logger, func(entry os.DirEntry) bool {
		info, err := entry.Info()
		if err != nil {
			return false
		}
		return info.ModTime().Before(cutoff)
	}, "stale")
}

func sweep(base string, logger *slog.Logger, match func(os.DirEntry) bool, kind string) SweepResult {
	result := SweepResult{}

	base = strings.TrimSpace(base)
	if base == "" {
		return result
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: base, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}
		if !match(entry) {
			continue
		}

		dirPath := filepath.Join(base, entry.Name())
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove "+kind+" workspace",
					logging.String("path", dirPath),
					logging.Error(err),
					logging.String(logging.FieldEventType, "workspace_sweep_failed"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed "+kind+" workspace",
				logging.String("path", dirPath),
				logging.String(logging.FieldEventType, "workspace_sweep"),
			)
		}
	}

	return result
}
