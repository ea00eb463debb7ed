//go:build linux

package sandbox

import (
	"fmt"
	"os"

	"github.com/codefionn/capbridge/internal/logger"
	landlock "github.com/landlock-lsm/go-landlock/landlock"
)

// apply restricts filesystem reads to the configured roots via Landlock.
func (s *Sandbox) apply() error {
	rules := make([]landlock.Rule, 0, len(s.readRoots))
	for _, root := range s.readRoots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("cannot stat sandbox root %s: %w", root, err)
		}
		if info.IsDir() {
			rules = append(rules, landlock.RODirs(root))
		} else {
			rules = append(rules, landlock.ROFiles(root))
		}
	}

	cfg := landlock.V6
	if s.bestEffort {
		// Degrade gracefully on kernels without (full) Landlock support.
		cfg = cfg.BestEffort()
	}

	if err := cfg.RestrictPaths(rules...); err != nil {
		return fmt.Errorf("landlock restriction failed: %w", err)
	}

	logger.Debug("Landlock confinement active (best effort: %v)", s.bestEffort)
	return nil
}
