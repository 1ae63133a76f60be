// Package config loads satchel's runtime configuration from a YAML file
// with environment-variable overrides, and validates the result against
// an embedded CUE schema before anything else starts.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full runtime configuration.
type Config struct {
	DatabasePath string  `yaml:"database_path" json:"database_path"`
	API          API     `yaml:"api" json:"api"`
	Session      Session `yaml:"session" json:"session"`
	Log          Log     `yaml:"log" json:"log"`
}

// API configures the remote service client.
type API struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Session configures the offline session marker.
type Session struct {
	// SigningKey signs the synthetic offline session token. Device-local;
	// never shared with the remote service.
	SigningKey string `yaml:"signing_key" json:"signing_key"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" json:"level"`
	Environment string `yaml:"environment" json:"environment"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		DatabasePath: "satchel.db",
		API: API{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 15,
		},
		Session: Session{SigningKey: "satchel-dev-key"},
		Log:     Log{Level: "info", Environment: "development"},
	}
}

// Load reads the YAML config at path (missing file falls back to
// defaults), applies .env / environment overrides, and validates the
// result. The override names are SATCHEL_DB_PATH, SATCHEL_API_URL,
// SATCHEL_API_TIMEOUT, SATCHEL_SIGNING_KEY, SATCHEL_LOG_LEVEL and
// SATCHEL_ENV.
func Load(path string) (Config, error) {
	// .env is optional; absence is the normal case outside development.
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SATCHEL_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SATCHEL_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SATCHEL_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SATCHEL_SIGNING_KEY"); v != "" {
		cfg.Session.SigningKey = v
	}
	if v := os.Getenv("SATCHEL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SATCHEL_ENV"); v != "" {
		cfg.Log.Environment = v
	}
}

// Validate checks the configuration against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cuePath("#Config")).Unify(value)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
