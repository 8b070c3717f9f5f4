package dbprep

/*

schema migrations

*/

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// newMigrator builds a migrator over the file-based migration
// sources.
func newMigrator(p Params) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+p.MigrationsDir, p.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open migrations at %q: %v", p.MigrationsDir, err)
	}
	return m, nil
}

// SchemaUp creates the database with the right schema.  Already
// being at the latest schema is not an error.
func SchemaUp(p Params) error {
	m, err := newMigrator(p)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("Table creation had errors: %v", err)
	}
	return nil
}

// SchemaDown tears down the database.
func SchemaDown(p Params) error {
	m, err := newMigrator(p)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("Table deletion had errors: %v", err)
	}
	return nil
}

// SchemaVersion returns the version of the database.  A
// database with no schema at all is version 0.
func SchemaVersion(p Params) (uint, error) {
	m, err := newMigrator(p)
	if err != nil {
		return 0, err
	}
	defer m.Close()
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("Schema version %d is dirty; fix it by hand", version)
	}
	return version, nil
}
