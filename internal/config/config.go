// Package config loads the service configuration from config.yaml, an optional
// .env file and the environment, in that order of precedence (last wins).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	SourceStatic   = "static"
	SourcePostgres = "postgres"

	ClassifierNone   = "none"
	ClassifierGemini = "gemini"
	ClassifierLocal  = "local"
)

// Config is the full service configuration.
type Config struct {
	Server     Server     `yaml:"server"`
	Log        Log        `yaml:"log"`
	Catalog    Catalog    `yaml:"catalog"`
	Session    Session    `yaml:"session"`
	Classifier Classifier `yaml:"classifier"`
}

type Server struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Catalog selects where recipes come from. The built-in catalog is used
// unless Source is "postgres".
type Catalog struct {
	Source      string `yaml:"source"`
	DatabaseURL string `yaml:"database_url"`
	Seed        bool   `yaml:"seed"`
}

type Session struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	CookieMaxAge  int           `yaml:"cookie_max_age"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

// Classifier configures the optional model used when no keyword matches.
type Classifier struct {
	Provider     string        `yaml:"provider"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	LocalURL     string        `yaml:"local_url"`
	LocalModel   string        `yaml:"local_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Log: Log{Level: "info", JSON: true},
		Catalog: Catalog{
			Source: SourceStatic,
		},
		Session: Session{
			TTL:           2 * time.Hour,
			SweepInterval: 5 * time.Minute,
			CookieMaxAge:  60 * 60 * 48,
		},
		Classifier: Classifier{
			Provider:    ClassifierNone,
			GeminiModel: "gemini-1.5-flash",
			LocalURL:    "http://localhost:1234/v1/chat/completions",
			LocalModel:  "gemma-3-12b-it:2",
			Timeout:     10 * time.Second,
		},
	}
}

// Load reads path (a missing file is fine), then any env files that exist
// unless APP_ENV is "production", then applies environment overrides.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if os.Getenv("APP_ENV") != "production" {
		if err := loadEnvFiles(envFiles); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(existing...), "failed to load env files")
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.AllowOrigins = splitList(v)
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Catalog.Source, "CATALOG_SOURCE")
	setString(&c.Catalog.DatabaseURL, "DATABASE_URL")
	setString(&c.Classifier.Provider, "CLASSIFIER")
	setString(&c.Classifier.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Classifier.GeminiModel, "GEMINI_MODEL")
	setString(&c.Classifier.LocalURL, "LOCAL_LLM_URL")
	setString(&c.Classifier.LocalModel, "LOCAL_LLM_MODEL")

	if err := setBool(&c.Catalog.Seed, "CATALOG_SEED"); err != nil {
		return err
	}
	if err := setBool(&c.Log.JSON, "LOG_JSON"); err != nil {
		return err
	}
	if err := setDuration(&c.Session.TTL, "SESSION_TTL"); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}

	switch c.Catalog.Source {
	case SourceStatic:
	case SourcePostgres:
		if c.Catalog.DatabaseURL == "" {
			return errors.New("catalog.database_url is required for the postgres source")
		}
	default:
		return errors.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}

	switch c.Classifier.Provider {
	case "", ClassifierNone, ClassifierLocal:
	case ClassifierGemini:
		if c.Classifier.GeminiAPIKey == "" {
			return errors.New("classifier.gemini_api_key is required for the gemini provider")
		}
	default:
		return errors.Errorf("unknown classifier.provider %q", c.Classifier.Provider)
	}

	if c.Session.TTL < 0 || c.Session.SweepInterval < 0 {
		return errors.New("session durations must not be negative")
	}
	return nil
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setBool(target *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*target = b
	return nil
}

func setDuration(target *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*target = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
