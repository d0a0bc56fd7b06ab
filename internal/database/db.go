package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/campus-notice-collector/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps one source store connection
type DB struct {
	*sqlx.DB
	Driver string
	log    zerolog.Logger
}

// New opens a store connection and verifies it with a ping
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	if cfg.Driver == DriverSQLite {
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapper := &DB{
		DB:     db,
		Driver: cfg.Driver,
		log:    log.With().Str("component", "database").Str("driver", cfg.Driver).Logger(),
	}

	target := cfg.Path
	if cfg.Driver == DriverPostgres {
		target = cfg.Host + "/" + cfg.Name
	}
	wrapper.log.Info().
		Str("target", target).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")

	return wrapper, nil
}

// RunMigrations applies the embedded schema migrations for the driver
func (db *DB) RunMigrations() error {
	db.log.Info().Msg("Running database migrations")

	m, err := db.migrator()
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	db.log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")

	return nil
}

// MigrateDown rolls back the last migration
func (db *DB) MigrateDown() error {
	db.log.Info().Msg("Rolling back last migration")

	m, err := db.migrator()
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	db.log.Info().Msg("Migration rolled back")
	return nil
}

// The returned migrator shares the connection pool, so it is never closed.
func (db *DB) migrator() (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch db.Driver {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db.DB.DB, &sqlite.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB.DB, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported driver %q", db.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrations, "migrations/"+db.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
