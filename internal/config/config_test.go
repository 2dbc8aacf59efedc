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
	"APP_ENV", "PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_JSON", "CATALOG_SOURCE", "DATABASE_URL",
	"CATALOG_SEED", "CLASSIFIER", "GEMINI_API_KEY", "GEMINI_MODEL", "LOCAL_LLM_URL",
	"LOCAL_LLM_MODEL", "SESSION_TTL",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, SourceStatic, cfg.Catalog.Source)
	assert.Equal(t, ClassifierNone, cfg.Classifier.Provider)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
  allow_origins: ["https://shop.example.com"]
log:
  level: debug
catalog:
  source: postgres
  database_url: postgres://localhost/grocery
  seed: true
session:
  ttl: 45m
classifier:
  provider: local
  timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.True(t, cfg.Catalog.Seed)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, ClassifierLocal, cfg.Classifier.Provider)
	assert.Equal(t, 3*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "gemma-3-12b-it:2", cfg.Classifier.LocalModel)
}

func TestEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "server:\n  port: \"9090\"\nlog:\n  level: warn\n")
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("CLASSIFIER", "gemini")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, ClassifierGemini, cfg.Classifier.Provider)
	assert.Equal(t, "secret", cfg.Classifier.GeminiAPIKey)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "DATABASE_URL=postgres://from-dotenv/grocery\nCATALOG_SOURCE=postgres\n")
	// godotenv never overrides variables that are already set, even when empty
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	require.NoError(t, os.Unsetenv("CATALOG_SOURCE"))
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("CATALOG_SOURCE")
	})

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), envFile, filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "postgres://from-dotenv/grocery", cfg.Catalog.DatabaseURL)
}

func TestLoadEnvFileSkippedInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	envFile := writeFile(t, ".env", "CATALOG_SOURCE=bogus\n")
	require.NoError(t, os.Unsetenv("CATALOG_SOURCE"))
	t.Cleanup(func() { os.Unsetenv("CATALOG_SOURCE") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, cfg.Catalog.Source)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "server: [\n"},
		{name: "bad level", yaml: "log:\n  level: loud\n"},
		{name: "unknown source", yaml: "catalog:\n  source: mongo\n"},
		{name: "postgres without url", yaml: "catalog:\n  source: postgres\n"},
		{name: "gemini without key", yaml: "classifier:\n  provider: gemini\n"},
		{name: "unknown classifier", yaml: "classifier:\n  provider: oracle\n"},
		{name: "bad ttl env", env: map[string]string{"SESSION_TTL": "forever"}},
		{name: "bad seed env", env: map[string]string{"CATALOG_SEED": "maybe"}},
		{name: "negative ttl", yaml: "session:\n  ttl: -1m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "config.yaml", tt.yaml)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
