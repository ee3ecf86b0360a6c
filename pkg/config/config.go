// Package config holds the ambient, YAML-backed Config every fuznet
// subcommand loads: log level/format, default file locations, and
// output/reporting knobs. Shape and loading idiom mirror the teacher's
// pkg/config package (defaults -> env-var-expanded file overlay ->
// validate).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level fuznet configuration document.
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Library   LibraryConfig   `yaml:"library"`
	Reporting ReportingConfig `yaml:"reporting"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// FrameworkConfig holds general process-wide settings.
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LibraryConfig points at the default cell-library and settings files a
// run uses when the CLI doesn't override them.
type LibraryConfig struct {
	CellLibraryPath string `yaml:"cell_library_path"`
	SettingsPath    string `yaml:"settings_path"`
}

// ReportingConfig controls where generate/reduce artifacts land.
type ReportingConfig struct {
	OutputDir string `yaml:"output_dir"`
	KeepLastN int    `yaml:"keep_last_n"`
}

// MetricsConfig controls the optional Prometheus HTTP exposition.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the listener
}

// DefaultConfig returns the configuration a fresh config.yaml is
// pre-populated with.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Library: LibraryConfig{
			CellLibraryPath: "library.yaml",
			SettingsPath:    "settings.yaml",
		},
		Reporting: ReportingConfig{
			OutputDir: "./out",
			KeepLastN: 50,
		},
		Metrics: MetricsConfig{
			ListenAddr: "",
		},
	}
}

// Load reads path (defaulting to "config.yaml"), overlaying it onto
// DefaultConfig. Environment variables in the file (e.g. $HOME) are
// expanded before parsing. A missing file is not an error: the defaults
// are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that c is complete enough to run with.
func (c *Config) Validate() error {
	if c.Library.CellLibraryPath == "" {
		return fmt.Errorf("library.cell_library_path is required")
	}
	if c.Library.SettingsPath == "" {
		return fmt.Errorf("library.settings_path is required")
	}
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}
	switch c.Framework.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("framework.log_format must be text or json, got %q", c.Framework.LogFormat)
	}
	return nil
}
