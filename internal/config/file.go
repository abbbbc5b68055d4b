// Package config handles domsnap configuration from YAML files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level domsnap configuration.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Store    StoreConfig    `yaml:"store"`
	HTTP     HTTPConfig     `yaml:"http"`
	Sinks    []SinkConfig   `yaml:"sinks"`
}

// BrowserConfig controls the Chrome session.
type BrowserConfig struct {
	Remote         string   `yaml:"remote"`
	Mode           string   `yaml:"mode"` // headless | headful
	BlockResources []string `yaml:"block_resources"`
	XvfbDisplay    string   `yaml:"xvfb_display"`
}

// SnapshotConfig sets the default capture options.
type SnapshotConfig struct {
	HighlightElements *bool `yaml:"highlight_elements"`
	FocusIndex        *int  `yaml:"focus_index"`
	ViewportExpansion *int  `yaml:"viewport_expansion"`
	Markdown          bool  `yaml:"markdown"`
}

// StoreConfig controls snapshot history persistence.
type StoreConfig struct {
	Path    string `yaml:"path"` // empty disables the store
	MaxRows int    `yaml:"max_rows"`
}

// HTTPConfig controls the optional HTTP API.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// SinkConfig defines an output backend for captured snapshots.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.Mode == "" {
		c.Browser.Mode = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Snapshot.HighlightElements == nil {
		v := true
		c.Snapshot.HighlightElements = &v
	}
	if c.Snapshot.FocusIndex == nil {
		v := -1
		c.Snapshot.FocusIndex = &v
	}
	if c.Snapshot.ViewportExpansion == nil {
		v := 0
		c.Snapshot.ViewportExpansion = &v
	}
	if c.Store.MaxRows <= 0 {
		c.Store.MaxRows = 1000
	}
}
