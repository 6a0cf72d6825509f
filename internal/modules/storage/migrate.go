package storage

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrate brings the kv_store schema of a SQL backend up to date. Running it against an
// up-to-date database is not an error.
func Migrate(driver, dsn string) error {
	var url string
	switch driver {
	case DriverPostgres:
		url = dsn
	case DriverMySQL:
		url = "mysql://" + dsn
	default:
		return errors.Errorf("driver %q has no migrations", driver)
	}

	src, err := iofs.New(migrationFiles, "migrations/"+driver)
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
