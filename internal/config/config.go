// Package config loads process configuration from config.yaml, .env files
// and CADENCE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/cadence/internal/constants"
)

const (
	EnvDatabase = "CADENCE_DB"
	EnvDebug    = "CADENCE_DEBUG"
	EnvLogDir   = "CADENCE_LOG_DIR"
)

type Config struct {
	// Database is a SQLite file path, a PostgreSQL connection string, or
	// "keyring" to use the connection string stored in the OS keyring.
	Database string `yaml:"database"`
	Debug    bool   `yaml:"debug"`
	LogDir   string `yaml:"log_dir,omitempty"`
}

func Default() Config {
	return Config{Database: constants.DefaultConfigPath}
}

// DefaultPath returns the location of config.yaml.
func DefaultPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), constants.ConfigFileName)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Load reads the config file at path, which may be missing, then applies
// .env files from the config directory and the working directory, then the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	for _, envFile := range []string{filepath.Join(filepath.Dir(path), ".env"), ".env"} {
		if err := loadEnvFile(envFile); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if cfg.Database == "" {
		cfg.Database = constants.DefaultConfigPath
	}
	return cfg, nil
}

// loadEnvFile loads variables from a .env file without overriding ones
// already set. A missing file is ignored.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := getenv(EnvLogDir); v != "" {
		c.LogDir = v
	}
	if v := getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Save writes c to path as YAML, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// DatabasePath returns Database with ~ expanded. Connection strings and the
// keyring target are returned unchanged.
func (c Config) DatabasePath() string {
	return ExpandHome(c.Database)
}
