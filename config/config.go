// Package config loads the deployment configuration for the
// pipes services: where the cache and database live, what port
// to serve on, and which key namespace to use.  Configuration
// comes from an optional YAML file with environment variables
// layered on top, so containerized deployments can run with no
// file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full deployment configuration.
type Config struct {
	// Env prefixes every cache key, separating deployments that
	// share a Redis instance.
	Env string `yaml:"env"`

	// Port the web server listens on.
	Port int `yaml:"port"`

	// CacheURL locates the Redis cache.
	CacheURL string `yaml:"cacheUrl"`

	// DatabaseURL locates the Postgres database.
	DatabaseURL string `yaml:"databaseUrl"`

	// MigrationsDir holds the schema migration sources.  Left
	// empty, storage preparation finds them relative to the
	// working directory.
	MigrationsDir string `yaml:"migrationsDir"`
}

// Default returns the development-machine configuration.
func Default() *Config {
	return &Config{
		Env:         "pipes",
		Port:        8080,
		CacheURL:    "redis://localhost:6379/",
		DatabaseURL: "postgres://localhost/pipes?sslmode=disable",
	}
}

// Load builds the configuration: defaults, then the YAML file
// (the given path, or $PIPES_CONFIG, or nothing), then
// environment overrides.  A missing file is only an error when
// it was explicitly asked for.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("PIPES_CONFIG")
	}
	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("Couldn't read config file %q: %v", path, err)
			}
		} else if err := yaml.Unmarshal(bytes, cfg); err != nil {
			return nil, fmt.Errorf("Couldn't parse config file %q: %v", path, err)
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment layers the conventional deployment variables
// over the file values.
func (cfg *Config) applyEnvironment() error {
	if v := os.Getenv("PIPES_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q isn't a number: %v", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.CacheURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PIPES_MIGRATIONS"); v != "" {
		cfg.MigrationsDir = v
	}
	return nil
}

// Validate checks the assembled configuration for values no
// deployment can run with.
func (cfg *Config) Validate() error {
	if cfg.Env == "" {
		return fmt.Errorf("Configured env is empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("Configured port %d is out of range", cfg.Port)
	}
	if cfg.CacheURL == "" {
		return fmt.Errorf("Configured cache URL is empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("Configured database URL is empty")
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (cfg *Config) Addr() string {
	return fmt.Sprintf(":%d", cfg.Port)
}
