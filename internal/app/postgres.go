package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	goose "github.com/pressly/goose/v3"

	"github.com/guttosm/dappulse/config"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

const (
	archiveMaxOpenConns = 4
	archiveMaxIdleConns = 2
	archiveConnMaxIdle  = 5 * time.Minute
	archivePingTimeout  = 5 * time.Second
)

// InitPostgres opens the snapshot archive database.
//
// Behavior:
//   - Uses cfg.Postgres.URL when set, otherwise builds the DSN from the individual fields.
//   - Sizes the pool for one refresh writer plus a few history readers.
//   - Pings with a bounded timeout; the handle is closed again when the ping fails.
//
// Returns:
//   - *sql.DB: an open database connection pool (safe for concurrent use).
//   - error: if opening or pinging the database fails.
//
// Example usage:
//
//	db, err := app.InitPostgres(config.AppConfig)
//	if err != nil {
//	    return fmt.Errorf("db connect: %w", err)
//	}
//	defer db.Close()
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	db, err := sqlOpener("postgres", postgresDSN(cfg.Postgres))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(archiveMaxOpenConns)
	db.SetMaxIdleConns(archiveMaxIdleConns)
	db.SetConnMaxIdleTime(archiveConnMaxIdle)

	ctx, cancel := context.WithTimeout(context.Background(), archivePingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres at %s:%d: %w", cfg.Postgres.Host, cfg.Postgres.Port, err)
	}

	return db, nil
}

// postgresDSN returns the configured URL or assembles one with escaped credentials.
func postgresDSN(pg config.PostgresConfig) string {
	if pg.URL != "" {
		return pg.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(pg.User, pg.Password),
		Host:   pg.Host + ":" + strconv.Itoa(pg.Port),
		Path:   "/" + pg.DBName,
	}
	if pg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {pg.SSLMode}}.Encode()
	}
	return u.String()
}

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// postgresOpener is an indirection used by InitializeApp; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres

// MigratePostgres applies the goose migrations found in dir (db/migrations).
func MigratePostgres(db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations from %s: %w", dir, err)
	}
	return nil
}
