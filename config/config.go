// Package config provides configuration loading and management for insight.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/insight/model"
)

// Config represents the complete insight configuration
type Config struct {
	Models     *model.RegistryConfig `yaml:"models"`
	Catalog    CatalogConfig         `yaml:"catalog"`
	Outputs    OutputsConfig         `yaml:"outputs"`
	Trajectory TrajectoryConfig      `yaml:"trajectory"`
	Log        LogConfig             `yaml:"log"`
}

// CatalogConfig configures the product catalog used by the search tool
type CatalogConfig struct {
	// Path is the products JSON file (default: products.json)
	Path string `yaml:"path"`
	// Watch reloads the catalog when the file changes during interactive sessions
	Watch bool `yaml:"watch"`
}

// OutputsConfig configures where generated files are written
type OutputsConfig struct {
	// Dir is the output directory for reports, transcriptions, and analytics
	Dir string `yaml:"dir"`
}

// TrajectoryConfig configures LLM call recording
type TrajectoryConfig struct {
	// Path is the SQLite database file for call records
	Path string `yaml:"path"`
	// Disabled turns off call recording entirely
	Disabled bool `yaml:"disabled"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	trajectoryPath := "insight-calls.db"
	if home, err := os.UserHomeDir(); err == nil {
		trajectoryPath = filepath.Join(home, ".local", "share", "insight", "calls.db")
	}

	return &Config{
		Models: nil, // Use the default model registry
		Catalog: CatalogConfig{
			Path:  "products.json",
			Watch: true,
		},
		Outputs: OutputsConfig{
			Dir: "outputs",
		},
		Trajectory: TrajectoryConfig{
			Path: trajectoryPath,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Outputs.Dir == "" {
		return fmt.Errorf("outputs.dir is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Registry builds the model registry: the defaults overlaid with any
// capabilities and endpoints from the models section.
func (c *Config) Registry() *model.Registry {
	registry := model.NewDefaultRegistry()
	if c.Models != nil {
		registry.MergeFromConfig(c.Models)
	}
	return registry
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Models != nil {
		if c.Models == nil {
			c.Models = other.Models
		} else {
			mergeRegistryConfig(c.Models, other.Models)
		}
	}

	// Catalog
	if other.Catalog.Path != "" {
		c.Catalog.Path = other.Catalog.Path
	}

	// Outputs
	if other.Outputs.Dir != "" {
		c.Outputs.Dir = other.Outputs.Dir
	}

	// Trajectory
	if other.Trajectory.Path != "" {
		c.Trajectory.Path = other.Trajectory.Path
	}
	if other.Trajectory.Disabled {
		c.Trajectory.Disabled = true
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// mergeRegistryConfig overlays src onto dst, entry by entry.
func mergeRegistryConfig(dst, src *model.RegistryConfig) {
	if dst.Capabilities == nil {
		dst.Capabilities = make(map[string]*model.CapabilityConfig)
	}
	for k, v := range src.Capabilities {
		dst.Capabilities[k] = v
	}

	if dst.Endpoints == nil {
		dst.Endpoints = make(map[string]*model.EndpointConfig)
	}
	for k, v := range src.Endpoints {
		dst.Endpoints[k] = v
	}

	if src.Defaults != nil {
		dst.Defaults = src.Defaults
	}
}
