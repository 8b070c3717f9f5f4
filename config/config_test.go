package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnvironment unsets the override variables for the
// duration of a test.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PIPES_CONFIG", "PIPES_ENV", "PORT",
		"REDIS_URL", "DATABASE_URL", "PIPES_MIGRATIONS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnvironment(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.Env != "pipes" {
		t.Errorf("Defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnvironment(t)
	path := filepath.Join(t.TempDir(), "pipes.yaml")
	contents := "env: staging\nport: 9000\ncacheUrl: redis://cache:6379/\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "staging" || cfg.Port != 9000 || cfg.CacheURL != "redis://cache:6379/" {
		t.Errorf("File values: %+v", cfg)
	}
	// values the file doesn't set keep their defaults
	if cfg.DatabaseURL != Default().DatabaseURL {
		t.Errorf("Database URL: got %q, expected the default", cfg.DatabaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnvironment(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Explicitly missing file accepted")
	}
	// a missing $PIPES_CONFIG is fine
	t.Setenv("PIPES_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(""); err != nil {
		t.Errorf("Missing optional file rejected: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnvironment(t)
	t.Setenv("PIPES_ENV", "ci")
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://db/pipes")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "ci" || cfg.Port != 3000 || cfg.DatabaseURL != "postgres://db/pipes" {
		t.Errorf("Overrides: %+v", cfg)
	}

	t.Setenv("PORT", "eighty")
	if _, err = Load(""); err == nil {
		t.Errorf("Unparseable PORT accepted")
	}
}

func TestValidate(t *testing.T) {
	breakages := []func(*Config){
		func(c *Config) { c.Env = "" },
		func(c *Config) { c.Port = 0 },
		func(c *Config) { c.Port = 70000 },
		func(c *Config) { c.CacheURL = "" },
		func(c *Config) { c.DatabaseURL = "" },
	}
	for i, corrupt := range breakages {
		cfg := Default()
		corrupt(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Broken config %d accepted: %+v", i, cfg)
		}
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr: got %q, expected :8080", cfg.Addr())
	}
}
