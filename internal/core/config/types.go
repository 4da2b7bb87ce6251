package config

// Config represents the subsync configuration file.
type Config struct {
	Version string   `yaml:"version"`
	Targets []Target `yaml:"targets"`
}

// Target is a directory expected to be an independently version-controlled
// working copy. Declaration order is processing order.
type Target struct {
	// Path is the target directory, relative to the config root unless absolute.
	Path string `yaml:"path"`
	// Name is an optional display name; defaults to the path.
	Name string `yaml:"name,omitempty"`
	// URL is the clone source, used only when bootstrapping a missing target.
	URL string `yaml:"url,omitempty"`
}

// DisplayName returns the name to show in output for this target.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Path
}

// DefaultConfig returns a starter configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Targets: []Target{},
	}
}
