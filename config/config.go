package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed flux2hfe.toml
var defaultConfigData []byte

// FileName is the name of the per-user configuration file.
const FileName = ".flux2hfe.toml"

// Config represents the entire TOML configuration structure
type Config struct {
	BitRate    uint   `toml:"bitrate"`     // kbit/s
	Algorithm  string `toml:"algorithm"`   // decoding strategy name
	BufferSize int    `toml:"buffer_size"` // bytes, power of two
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`

	// Source names where the configuration was loaded from, "(embedded)" for defaults
	Source string `toml:"-"`
}

// Log formats
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// userConfigPath determines the per-user config file path based on the operating system
func userConfigPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		// Use AppData directory for Windows
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "flux2hfe")
	default:
		// Linux/macOS: use home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, FileName), nil
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	conf, err := Parse(defaultConfigData)
	if err != nil {
		return nil, fmt.Errorf("embedded default config: %w", err)
	}
	conf.Source = "(embedded)"
	return conf, nil
}

// Load reads the configuration.
// An explicit path must exist. Without one, the per-user file is used
// when present, otherwise the embedded defaults.
// Keys missing from a file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		userPath, err := userConfigPath()
		if err == nil {
			if _, statErr := os.Stat(userPath); statErr == nil {
				path = userPath
			}
		}
	}
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	conf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	conf.Source = path
	return conf, nil
}

// Parse decodes TOML data on top of the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var conf Config
	if _, err := toml.Decode(string(defaultConfigData), &conf); err != nil {
		return nil, fmt.Errorf("failed to parse default TOML config: %w", err)
	}
	meta, err := toml.Decode(string(data), &conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.BitRate == 0 {
		return errors.New("`bitrate` must be positive")
	}
	if c.Algorithm == "" {
		return errors.New("`algorithm` key is missing or empty in config")
	}
	if c.BufferSize < 4 || c.BufferSize&(c.BufferSize-1) != 0 {
		return fmt.Errorf("invalid buffer_size: %d (must be a power of two of at least 4)", c.BufferSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q (must be debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log_format: %q (must be auto, text or json)", c.LogFormat)
	}
	return nil
}
