// Package workspace owns the temporary storage area for fetch jobs. Each
// job gets a uniquely named directory under a shared base; every acquire is
// matched by exactly one effective release on every exit path, and failed
// deletions are surfaced as leak warnings rather than request failures.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"warble/internal/logging"
)

// Prefix identifies workspace directories under the base location. The
// startup sweep only touches entries carrying it.
const Prefix = "ws-"

// Manager allocates isolated workspaces under a single base directory.
type Manager struct {
	base   string
	logger *slog.Logger
}

// NewManager binds a manager to an existing base directory. The caller is
// expected to have verified writability at startup (config.ProbeStorage).
func NewManager(base string, logger *slog.Logger) (*Manager, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("workspace base: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace base %q is not a directory", base)
	}
	return &Manager{base: base, logger: logging.NewComponentLogger(logger, "workspace")}, nil
}

// Base returns the shared base directory.
func (m *Manager) Base() string {
	return m.base
}

// Acquire creates a fresh workspace directory with a collision-resistant
// random name. Names are never derived from user input, so identical
// queries from different users cannot collide.
func (m *Manager) Acquire() (*Workspace, error) {
	name := Prefix + uuid.NewString()
	path := filepath.Join(m.base, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("acquire workspace: %w", err)
	}
	return &Workspace{path: path, logger: m.logger}, nil
}

// Workspace is one job's isolated directory. Release is idempotent.
type Workspace struct {
	path   string
	logger *slog.Logger
	once   sync.Once
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// Release deletes the workspace and everything in it. The second and later
// calls are no-ops. Deletion failure never propagates to the request; it is
// logged as a leak so the janitor or the next startup sweep can reclaim it.
func (w *Workspace) Release() {
	w.once.Do(func() {
		if err := os.RemoveAll(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			if w.logger != nil {
				w.logger.Warn("failed to remove workspace",
					logging.String("path", w.path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "workspace_leak"),
					logging.String(logging.FieldErrorHint, "check base_dir permissions and open file handles"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			return
		}
		if w.logger != nil {
			w.logger.Debug("workspace released", logging.String("path", w.path))
		}
	})
}
