package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "stindex.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/stindex"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger   zerolog.Logger
	homeDir  string
	workDir  string
	explicit string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExplicitFile adds a file loaded last, typically from --config. Unlike
// the user and project files it must exist.
func WithExplicitFile(path string) LoaderOption {
	return func(l *Loader) { l.explicit = path }
}

// WithDirs overrides the home and working directories searched.
func WithDirs(home, work string) LoaderOption {
	return func(l *Loader) {
		l.homeDir = home
		l.workDir = work
	}
}

// NewLoader creates a new configuration loader
func NewLoader(logger zerolog.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{logger: logger}
	for _, o := range opts {
		o(l)
	}
	if l.homeDir == "" {
		l.homeDir, _ = os.UserHomeDir()
	}
	if l.workDir == "" {
		l.workDir, _ = os.Getwd()
	}
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config (embedded)
// 2. User config (~/.config/stindex/config.yaml)
// 3. Project config (stindex.yaml in current or parent directories)
// 4. Explicit file
func (l *Loader) Load() (*Config, error) {
	config := Default()

	if l.homeDir != "" {
		userConfigPath := filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug().Str("path", userConfigPath).Msg("Loaded user config")
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn().Str("path", userConfigPath).Err(err).Msg("Failed to load user config")
		}
	}

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug().Str("path", projectConfigPath).Msg("Loaded project config")
			config.Merge(projectConfig)
		} else {
			l.logger.Warn().Str("path", projectConfigPath).Err(err).Msg("Failed to load project config")
		}
	} else {
		l.logger.Debug().Msg("No project config found")
	}

	if l.explicit != "" {
		explicit, err := LoadFromFile(l.explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug().Str("path", l.explicit).Msg("Loaded explicit config")
		config.Merge(explicit)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// findProjectConfig searches for stindex.yaml in the working directory and
// its parents.
func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}
	dir := l.workDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
