// Package config loads runtime configuration: defaults, then an optional YAML
// file, then environment variables. Command-line flags are applied by main.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends understood by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds every knob of the catalog service.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	WebAddr         string        `yaml:"web_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`

	Store StoreConfig `yaml:"store"`
	Local LocalConfig `yaml:"local"`
	CORS  CORSConfig  `yaml:"cors"`
	Auth  AuthConfig  `yaml:"auth"`
	Flags FlagsConfig `yaml:"flags"`
}

// StoreConfig selects the backend of the remote catalog.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	DatabaseURL string `yaml:"database_url"`
	Schema      string `yaml:"schema"`
	// SeedFile replaces the built-in demo products (JSON with comments).
	SeedFile string `yaml:"seed_file"`
}

// LocalConfig locates the blob slot behind the local catalog UI.
type LocalConfig struct {
	DataDir  string `yaml:"data_dir"`
	SlotName string `yaml:"slot_name"`
}

type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// AuthConfig governs the mock user endpoints. Token checks are off unless
// UsersRequireToken is set.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	UsersRequireToken bool   `yaml:"users_require_token"`
}

type FlagsConfig struct {
	RolloutAPIKey string `yaml:"rollout_api_key"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		HTTPAddr:        ":3000",
		WebAddr:         ":8081",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			Schema:  "catalog",
		},
		Local: LocalConfig{
			DataDir:  "./data",
			SlotName: "products",
		},
		CORS: CORSConfig{AllowedOrigin: "http://localhost:3001"},
	}
}

// Load builds the configuration. path may be empty, in which case
// CATALOG_CONFIG is consulted; if that is empty too no file is read.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CATALOG_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr must not be empty"))
	}
	if c.Local.SlotName == "" {
		errs = append(errs, errors.New("local.slot_name must not be empty"))
	}
	if c.Auth.UsersRequireToken && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required when users_require_token is set"))
	}
	return errors.Join(errs...)
}

func applyEnv(c *Config) {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.WebAddr, "WEB_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.Schema, "DB_SCHEMA")
	setString(&c.Store.SeedFile, "SEED_FILE")
	setString(&c.Local.DataDir, "DATA_DIR")
	setString(&c.Local.SlotName, "SLOT_NAME")
	setString(&c.CORS.AllowedOrigin, "CORS_ALLOWED_ORIGIN")
	setString(&c.Flags.RolloutAPIKey, "ROLLOUT_API_KEY")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("USERS_REQUIRE_TOKEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Auth.UsersRequireToken = b
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ShutdownTimeout = d
		} else if sec, err := strconv.Atoi(v); err == nil {
			c.ShutdownTimeout = time.Duration(sec) * time.Second
		}
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
