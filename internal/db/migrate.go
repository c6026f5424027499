package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"seeding-auction/db/migrations"
)

// ErrDirty is returned when a previous migration stopped half way.
var ErrDirty = errors.New("database is in dirty state")

// Migrate brings the results schema at addr to migrations.Version. It returns
// the version found before migrating.
func Migrate(addr string) (uint, error) {
	driver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, err
	}
	defer driver.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", driver, addr)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	defer mg.Close()

	before, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	if dirty {
		return before, fmt.Errorf("%w at version %d", ErrDirty, before)
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, err
	}
	return before, nil
}
