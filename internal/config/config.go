package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration
type Config struct {
	API           APIConfig           `yaml:"api"`
	Storage       StorageConfig       `yaml:"storage"`
	Log           LogConfig           `yaml:"log"`
	Constructions ConstructionsConfig `yaml:"constructions"`
	Dev           bool                `yaml:"dev"`
}

// APIConfig holds HTTP listener configuration
type APIConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AccessLog bool   `yaml:"access_log"`
	PIDFile   string `yaml:"pid_file"`
	PIDLock   bool   `yaml:"pid_lock"`
}

// StorageConfig holds SQLite configuration
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// ConstructionsConfig bounds the construction sweep
type ConstructionsConfig struct {
	MaxNumGroups int    `yaml:"max_num_groups"`
	MaxGroupSize int    `yaml:"max_group_size"`
	RunOnStart   bool   `yaml:"run_on_start"`
	ContactEmail string `yaml:"contact_email"` // maintainer recorded on generated bounds
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:      "localhost",
			Port:      8080,
			AccessLog: true,
		},
		Storage: StorageConfig{
			Path: "golf.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Constructions: ConstructionsConfig{
			MaxNumGroups: 20,
			MaxGroupSize: 20,
		},
	}
}

// LoadConfig loads the configuration from a YAML file over the defaults and
// applies environment overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("GOLF_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("GOLF_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GOLF_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GOLF_API_PORT %q: %w", v, err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("GOLF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GOLF_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GOLF_CONSTRUCTIONS_CONTACT"); v != "" {
		cfg.Constructions.ContactEmail = v
	}
	if v := os.Getenv("GOLF_DEV"); v != "" {
		cfg.Dev = v == "true" || v == "1"
	}
	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 1-65535", c.API.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	if c.Constructions.MaxNumGroups < 2 || c.Constructions.MaxGroupSize < 2 {
		return fmt.Errorf("construction limits must be at least 2")
	}
	return nil
}

// SlogLevel parses the configured level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Addr returns the listen address
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
