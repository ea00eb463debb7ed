//go:build !linux

package sandbox

import "github.com/codefionn/capbridge/internal/logger"

// apply is a no-op outside Linux; only the user-space path check applies.
func (s *Sandbox) apply() error {
	logger.Warn("Kernel-level confinement unavailable on this platform; relying on path checks only")
	return nil
}
