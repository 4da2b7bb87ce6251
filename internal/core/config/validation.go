package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for structural problems. It does not
// touch the filesystem; a configured target that does not exist on disk is
// a per-run skip, not a config error.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		path := strings.TrimSpace(t.Path)
		if path == "" {
			return fmt.Errorf("target %d: path is empty", i)
		}
		if seen[path] {
			return fmt.Errorf("target %d: duplicate path %q", i, path)
		}
		seen[path] = true
	}

	return nil
}
