package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "insight.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/insight"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// envPrefix is the prefix for environment variable overrides
	envPrefix = "insight"
)

// envOverrides holds environment variable overrides (INSIGHT_* prefix).
type envOverrides struct {
	CatalogPath    string `envconfig:"CATALOG_PATH"`
	OutputDir      string `envconfig:"OUTPUT_DIR"`
	TrajectoryPath string `envconfig:"TRAJECTORY_PATH"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/insight/config.yaml)
// 3. Project config (insight.yaml in current or parent directories)
// 4. Environment variables (INSIGHT_* prefix; .env is loaded first)
func (l *Loader) Load() (*Config, error) {
	// Pull in a .env file if present; existing variables win
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("Loaded .env file")
	}

	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Apply environment overrides
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("process environment overrides: %w", err)
	}
	if env.CatalogPath != "" {
		config.Catalog.Path = env.CatalogPath
	}
	if env.OutputDir != "" {
		config.Outputs.Dir = env.OutputDir
	}
	if env.TrajectoryPath != "" {
		config.Trajectory.Path = env.TrajectoryPath
	}
	if env.LogLevel != "" {
		config.Log.Level = env.LogLevel
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't
// exist, returning its path. An existing file is left untouched.
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", fmt.Errorf("cannot determine home directory for user config")
	}

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for insight.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
