// Package config provides configuration management for Display Panel.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// Output is the output device every command targets.
	Output string `yaml:"output"`
	// Tool is the executable used to query and change the output.
	Tool string `yaml:"tool"`
	// SearchPath is the only PATH the tool is resolved and run with.
	SearchPath string `yaml:"search_path"`
	// RefreshRate is appended to custom modes.
	RefreshRate int `yaml:"refresh_rate"`
	// CommandTimeout bounds every external command.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// ResolutionSource is "static" or "probe".
	ResolutionSource string `yaml:"resolution_source"`
	// Resolutions is the static resolution list; index 0 is the default.
	Resolutions []string `yaml:"resolutions"`
	// Notifications enables desktop notifications for apply outcomes.
	Notifications bool `yaml:"notifications"`
	// TaskbarUnit is a systemd user unit reloaded after a scale change.
	TaskbarUnit string `yaml:"taskbar_unit"`
	// History enables the apply journal.
	History bool `yaml:"history"`

	path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	resolutions := make([]string, 0, len(display.DefaultResolutions))
	for _, r := range display.DefaultResolutions {
		resolutions = append(resolutions, r.String())
	}

	return &Config{
		Output:           common.DefaultOutput,
		Tool:             common.DefaultTool,
		SearchPath:       common.DefaultSearchPath,
		RefreshRate:      common.DefaultRefreshRate,
		CommandTimeout:   common.CommandTimeout,
		ResolutionSource: common.ResolutionSourceStatic,
		Resolutions:      resolutions,
		Notifications:    true,
		History:          true,
	}
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating it with defaults
// when it does not exist.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = configPath
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening configuration: %w", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %w", common.ErrConfigLoad, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %w", common.ErrConfigLoad, err)
	}
	config.path = configPath

	return config, nil
}

// validate verifies that configuration values are valid, falling back to
// defaults where a value can be replaced safely.
func (c *Config) validate() error {
	if c.Output == "" {
		c.Output = common.DefaultOutput
	}
	if c.Tool == "" {
		c.Tool = common.DefaultTool
	}
	if c.SearchPath == "" {
		c.SearchPath = common.DefaultSearchPath
	}
	if c.RefreshRate <= 0 {
		return fmt.Errorf("refresh_rate must be positive, got %d", c.RefreshRate)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive, got %s", c.CommandTimeout)
	}

	switch c.ResolutionSource {
	case common.ResolutionSourceStatic, common.ResolutionSourceProbe:
	default:
		common.LogWarn("Unknown resolution_source %q, using %s", c.ResolutionSource, common.ResolutionSourceStatic)
		c.ResolutionSource = common.ResolutionSourceStatic
	}

	if len(c.Resolutions) == 0 {
		c.Resolutions = DefaultConfig().Resolutions
	}
	for _, r := range c.Resolutions {
		if _, err := display.ParseDisplayMode(r); err != nil {
			return err
		}
	}
	return nil
}

// DisplayModes returns the configured resolutions as display modes.
func (c *Config) DisplayModes() []display.DisplayMode {
	modes := make([]display.DisplayMode, 0, len(c.Resolutions))
	for _, r := range c.Resolutions {
		mode, err := display.ParseDisplayMode(r)
		if err != nil {
			continue
		}
		modes = append(modes, mode)
	}
	return modes
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to the file it was loaded from, or to the
// default location.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %w", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %w", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: error saving configuration: %w", common.ErrConfigSave, err)
	}

	c.path = configPath
	return nil
}

// DefaultPath returns ~/.config/display-panel/config.yaml, creating the
// directory if needed.
func DefaultPath() (string, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, common.ConfigFileName), nil
}
