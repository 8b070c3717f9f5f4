// Package dbprep prepares the storage services for use: it
// installs the database schema, loads the builtin level
// catalogue, and clears the cache.  It's used by the server at
// startup and by the prepare-storage and clear-storage commands.
package dbprep

import (
	"fmt"
	"os"
	"path/filepath"
)

// Params locate the services and the migration sources.  Zero
// values get localhost defaults, so a bare Params{} works on a
// development machine.
type Params struct {
	CacheURL      string // Redis URL
	DatabaseURL   string // Postgres URL
	MigrationsDir string // directory holding the schema migrations
}

// withDefaults fills in the defaults for unset params.
func (p Params) withDefaults() Params {
	if p.CacheURL == "" {
		p.CacheURL = "redis://localhost:6379/"
	}
	if p.DatabaseURL == "" {
		p.DatabaseURL = "postgres://localhost/pipes?sslmode=disable"
	}
	if p.MigrationsDir == "" {
		dir := filepath.Join("dbprep", "migrations")
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			// running from the repo root
			p.MigrationsDir = dir
		} else {
			p.MigrationsDir = "migrations"
		}
	}
	return p
}

// EnsureData makes sure the schema is installed and, if this
// run installed it, loads the builtin levels.
func EnsureData(p Params) error {
	p = p.withDefaults()
	inVersion, err := SchemaVersion(p)
	if err != nil {
		return fmt.Errorf("Couldn't get initial data schema version: %v", err)
	}
	if err := SchemaUp(p); err != nil {
		return fmt.Errorf("Couldn't install data schema: %v", err)
	}
	outVersion, err := SchemaVersion(p)
	if err != nil {
		return fmt.Errorf("Couldn't get final data schema version: %v", err)
	}
	if outVersion == 0 {
		return fmt.Errorf("Database schema still at version 0, shouldn't be.")
	}
	if inVersion != outVersion {
		if err := DataUp(p); err != nil {
			return fmt.Errorf("Couldn't load data: %v", err)
		}
	}
	return nil
}

// RemoveData tears the schema (and with it all stored levels)
// down.
func RemoveData(p Params) error {
	p = p.withDefaults()
	version, err := SchemaVersion(p)
	if err != nil {
		return fmt.Errorf("Couldn't get initial data schema version: %v", err)
	}
	if version > 0 {
		if err := SchemaDown(p); err != nil {
			return fmt.Errorf("Couldn't remove tables: %v", err)
		}
	}
	return nil
}

// ReinitializeAll resets both services to a fresh state: empty
// cache, fresh schema, builtin levels loaded.
func ReinitializeAll(p Params) error {
	p = p.withDefaults()
	// clear cache
	if err := ClearCache(p); err != nil {
		return fmt.Errorf("Couldn't clear cache: %v", err)
	}
	// clear database
	if err := RemoveData(p); err != nil {
		return fmt.Errorf("Couldn't clear database: %v", err)
	}
	// reload database
	if err := EnsureData(p); err != nil {
		return fmt.Errorf("Couldn't load database: %v", err)
	}
	return nil
}
