package mysql

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies any pending schema migrations. It is safe to run on every
// start; an up-to-date schema is not an error.
func (s *Store) Migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migration source")
	}
	driver, err := migratemysql.WithInstance(s.db.DB, &migratemysql.Config{})
	if err != nil {
		return errors.Wrap(err, "prepare migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return errors.Wrap(err, "prepare migrations")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
