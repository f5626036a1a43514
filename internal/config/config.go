package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the application configuration
type Config struct {
	File  string    `toml:"file"`
	Color string    `toml:"color"`
	Log   LogConfig `toml:"log"`
}

// LogConfig controls diagnostic logging on stderr
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		File:  filepath.Join(homeDir, ".todo.json"),
		Color: ColorAuto,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the config file location: $TODO_CONFIG, or todo/config.toml
// under the user config directory.
func Path() (string, error) {
	if env := os.Getenv("TODO_CONFIG"); env != "" {
		return expandPath(env), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config dir: %w", err)
	}
	return filepath.Join(dir, "todo", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// No config file, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.File = expandPath(cfg.File)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// ApplyEnv lets TODO_FILE override the task file and NO_COLOR turn color off.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("TODO_FILE")); v != "" {
		c.File = expandPath(v)
	}
	if getenv("NO_COLOR") != "" {
		c.Color = ColorNever
	}
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Color)) {
	case ColorAuto, ColorAlways, ColorNever:
	case "":
		c.Color = ColorAuto
	default:
		return fmt.Errorf("invalid color %q (use auto|always|never)", c.Color)
	}
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("file must not be empty")
	}
	return nil
}

// UseColor resolves the color mode against whether output is a terminal
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
