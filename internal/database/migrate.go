package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/database/migrations"
)

// Migrate applies the embedded migrations for the configured dialect.
// It uses its own connection because closing a migrate instance closes the
// underlying *sql.DB.
func Migrate(cfg config.DatabaseConfig) error {
	db, err := sql.Open(DriverName(cfg.Driver), DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}

	src, err := iofs.New(migrations.FS, cfg.Driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver migratedb.Driver
	switch cfg.Driver {
	case "sqlite":
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create %s migration driver: %w", cfg.Driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
