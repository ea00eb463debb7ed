// Package sandbox confines the FileRead verb to configured read-only roots.
//
// On Linux with Landlock support (kernel 5.13+) the confinement is enforced
// by the kernel for the whole process; on other platforms only the
// user-space path check applies. Confinement is opt-in: without it the
// bridge serves any path the process itself can read, which is the
// protocol's historical behavior.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codefionn/capbridge/internal/logger"
)

// Sandbox holds the confinement state for the process.
type Sandbox struct {
	enabled    bool
	readRoots  []string
	bestEffort bool
}

// New creates a sandbox over the given read-only roots. Relative roots are
// resolved against the working directory at construction time.
func New(enabled bool, readRoots []string, bestEffort bool) (*Sandbox, error) {
	resolved := make([]string, 0, len(readRoots))
	for _, root := range readRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sandbox root %s: %w", root, err)
		}
		resolved = append(resolved, filepath.Clean(abs))
	}

	return &Sandbox{
		enabled:    enabled,
		readRoots:  resolved,
		bestEffort: bestEffort,
	}, nil
}

// Enabled returns whether confinement is active.
func (s *Sandbox) Enabled() bool {
	return s.enabled
}

// ReadRoots returns the resolved read-only roots.
func (s *Sandbox) ReadRoots() []string {
	return append([]string(nil), s.readRoots...)
}

// IsAllowed reports whether the given path falls under a configured root.
// With confinement disabled every path is allowed. This is the portable
// check; on Linux the kernel additionally enforces the same roots.
func (s *Sandbox) IsAllowed(path string) bool {
	if !s.enabled {
		return true
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs = filepath.Clean(abs)

	for _, root := range s.readRoots {
		if abs == root || strings.HasPrefix(abs, root+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// Apply installs kernel-level enforcement where the platform supports it.
// Call once at startup, after log and config files are open: restricting
// reads does not affect already-open descriptors.
func (s *Sandbox) Apply() error {
	if !s.enabled {
		return nil
	}
	if len(s.readRoots) == 0 {
		return fmt.Errorf("sandbox enabled with no read paths configured")
	}

	logger.Info("Applying filesystem confinement to %d read-only root(s)", len(s.readRoots))
	return s.apply()
}
