// Package config loads server settings from an optional .env file, an optional
// TOML file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	// HTTP Server
	Port string `toml:"port"`

	// Storage
	StorageBackend string `toml:"storage_backend"`
	DBPath         string `toml:"db_path"`
	DataDir        string `toml:"data_dir"`

	// Auth
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"-"`

	// Ledger
	StrictAmounts bool `toml:"strict_amounts"`

	// Expense extraction
	ExtractorAPIKey   string `toml:"extractor_api_key"`
	ExtractorModel    string `toml:"extractor_model"`
	ExtractorEndpoint string `toml:"extractor_endpoint"`

	LogLevel string `toml:"log_level"`
}

// fileConfig mirrors Config for TOML decoding; durations are written as strings.
type fileConfig struct {
	Config
	TokenTTL string `toml:"token_ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:              "8080",
		StorageBackend:    BackendSQLite,
		DBPath:            "./data/splitledger.db",
		DataDir:           "./data/ledgers",
		JWTSecret:         defaultJWTSecret,
		TokenTTL:          24 * time.Hour,
		ExtractorModel:    "gemini-2.0-flash",
		ExtractorEndpoint: "https://generativelanguage.googleapis.com/v1beta",
		LogLevel:          "info",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	fc := fileConfig{Config: *c, TokenTTL: c.TokenTTL.String()}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	ttl, err := time.ParseDuration(fc.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl %q in %s: %w", fc.TokenTTL, path, err)
	}

	*c = fc.Config
	c.TokenTTL = ttl
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)
	c.StrictAmounts = getEnvBool("LEDGER_STRICT_AMOUNTS", c.StrictAmounts)
	c.ExtractorAPIKey = getEnv("EXTRACTOR_API_KEY", c.ExtractorAPIKey)
	c.ExtractorModel = getEnv("EXTRACTOR_MODEL", c.ExtractorModel)
	c.ExtractorEndpoint = getEnv("EXTRACTOR_ENDPOINT", c.ExtractorEndpoint)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StorageBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			problems = append(problems, "database path cannot be empty when using sqlite backend")
		}
	case BackendJSONFile:
		if c.DataDir == "" {
			problems = append(problems, "data directory cannot be empty when using jsonfile backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of %v",
			c.StorageBackend, []string{BackendSQLite, BackendJSONFile}))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT secret cannot be empty")
	}
	if c.TokenTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.ExtractorAPIKey != "" && c.ExtractorModel == "" {
		problems = append(problems, "extractor model is required when an extractor API key is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// UsesDefaultSecret reports whether the JWT secret was left at its development default.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// ExtractorEnabled reports whether expense extraction from text is configured.
func (c *Config) ExtractorEnabled() bool {
	return c.ExtractorAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
