package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "STORAGE_BACKEND", "DB_PATH", "DATA_DIR", "JWT_SECRET",
	"TOKEN_TTL", "LEDGER_STRICT_AMOUNTS", "EXTRACTOR_API_KEY", "EXTRACTOR_MODEL",
	"EXTRACTOR_ENDPOINT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.StrictAmounts)
	assert.False(t, cfg.ExtractorEnabled())
	assert.True(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "jsonfile")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LEDGER_STRICT_AMOUNTS", "true")
	t.Setenv("EXTRACTOR_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendJSONFile, cfg.StorageBackend)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.StrictAmounts)
	assert.True(t, cfg.ExtractorEnabled())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "splitledger.toml")
	content := `
port = "7000"
storage_backend = "jsonfile"
data_dir = "/tmp/ledgers"
token_ttl = "30m"
strict_amounts = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Port, "environment wins over the file")
	assert.Equal(t, BackendJSONFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/ledgers", cfg.DataDir)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.StrictAmounts)
	// Untouched keys keep their defaults
	assert.Equal(t, "./data/splitledger.db", cfg.DBPath)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	_, err := Load()
	assert.ErrorContains(t, err, "does not exist")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`token_ttl = "soon"`), 0o644))
	t.Setenv("CONFIG_FILE", bad)
	_, err = Load()
	assert.ErrorContains(t, err, "invalid token_ttl")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"non-numeric port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, "invalid storage backend"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "database path"},
		{"empty data dir", func(c *Config) { c.StorageBackend = BackendJSONFile; c.DataDir = "" }, "data directory"},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, "JWT secret"},
		{"short ttl", func(c *Config) { c.TokenTTL = time.Second }, "token TTL"},
		{"key without model", func(c *Config) { c.ExtractorAPIKey = "k"; c.ExtractorModel = "" }, "extractor model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_AggregatesProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Port = "x"
	cfg.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "JWT secret")
}
