// ABOUTME: BMI configuration management with backend and unit-system selection.
// ABOUTME: Handles settings, preferences, and the storage backend factory function.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/bmi/internal/charm"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/harperreed/bmi/internal/units"
)

// Backends lists the supported storage backends.
var Backends = []string{"sqlite", "markdown", "charm"}

// Config stores bmi tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "markdown" or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts bmi.db here. Markdown puts adults/ and minors/ folders here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/bmi.
	DataDir string `json:"data_dir,omitempty"`

	// Units is the preferred unit system for input and display.
	// Defaults to the customary system of the locale in $LANG.
	Units string `json:"units,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUnits returns the configured unit system, falling back to the locale
// default when unset or invalid.
func (c *Config) GetUnits() units.System {
	if c.Units != "" {
		if sys, err := units.ParseSystem(c.Units); err == nil {
			return sys
		}
	}
	return LocaleUnits()
}

// LocaleUnits derives the unit system from the country part of $LC_ALL,
// $LC_MEASUREMENT or $LANG (for example en_US.UTF-8).
func LocaleUnits() units.System {
	for _, env := range []string{"LC_ALL", "LC_MEASUREMENT", "LANG"} {
		if country := localeCountry(os.Getenv(env)); country != "" {
			return units.SystemForCountry(country)
		}
	}
	return units.Metric
}

func localeCountry(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	parts := strings.FieldsFunc(locale, func(r rune) bool { return r == '_' || r == '-' })
	if len(parts) < 2 || len(parts[1]) != 2 {
		return ""
	}
	return strings.ToUpper(parts[1])
}

// Set updates a configuration key by name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "backend":
		for _, b := range Backends {
			if value == b {
				c.Backend = value
				return nil
			}
		}
		return fmt.Errorf("unknown backend: %q (want one of %s)", value, strings.Join(Backends, ", "))
	case "data_dir":
		c.DataDir = value
		return nil
	case "units":
		sys, err := units.ParseSystem(value)
		if err != nil {
			return err
		}
		c.Units = string(sys)
		return nil
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return storage.Open(storage.DBPath(dataDir))
	case "markdown":
		return storage.NewMarkdownStore(dataDir)
	case "charm":
		client, err := charm.InitClient()
		if err != nil {
			return nil, fmt.Errorf("open charm kv: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "bmi", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
