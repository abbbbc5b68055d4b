package domsnap

import (
	"github.com/hazyhaar/domsnap/internal/config"
)

// Config is the top-level domsnap configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls the Chrome session.
type BrowserConfig = config.BrowserConfig

// SnapshotConfig sets the default capture options.
type SnapshotConfig = config.SnapshotConfig

// StoreConfig controls snapshot history persistence.
type StoreConfig = config.StoreConfig

// HTTPConfig controls the optional HTTP API.
type HTTPConfig = config.HTTPConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return config.Default()
}
