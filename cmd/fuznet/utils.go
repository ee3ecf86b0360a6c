package main

import (
	"fmt"
	"os"

	"github.com/splogdes/fuznet/pkg/config"
	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/reporting"
	"github.com/splogdes/fuznet/pkg/settings"
)

// loadConfig loads configPath, auto-generating a default config.yaml if
// it doesn't exist yet.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", configPath)

		cfg := config.DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process-wide logger from the global -v/--json
// flags, overriding the config file's framework.log_level/log_format.
func newLogger(cfg *config.Config) *reporting.Logger {
	level := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		level = reporting.LogLevelDebug
	}
	format := reporting.LogFormat(cfg.Framework.LogFormat)
	if jsonOut {
		format = reporting.LogFormatJSON
	}
	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: format,
		Output: os.Stdout,
	})
}

// openLibrary loads the cell library the global -l/--lib flag names,
// falling back to cfg.Library.CellLibraryPath when the flag is unset.
func openLibrary(cfg *config.Config, flagPath string) (*netlib.Library, error) {
	path := flagPath
	if path == "" {
		path = cfg.Library.CellLibraryPath
	}
	return netlib.LoadLibrary(path)
}

// openSettings loads the run-tuning settings file, preferring an
// explicit path over cfg.Library.SettingsPath.
func openSettings(cfg *config.Config, flagPath string) (*settings.Settings, error) {
	path := flagPath
	if path == "" {
		path = cfg.Library.SettingsPath
	}
	return settings.Load(path)
}
