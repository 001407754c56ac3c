package app

import (
	"database/sql"
	"fmt"

	"github.com/guttosm/flippulse/config"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens and pings the PostgreSQL connection pool backing the
// flip log.
//
// Parameters:
//   - cfg (config.Config): configuration holding the Postgres settings.
//     Postgres.URL is used as is when set; otherwise the DSN is built from
//     host, port, user, password, database and SSL mode.
//
// Returns:
//   - *sql.DB: an open database connection pool (safe for concurrent use).
//   - error: if opening or pinging the database fails. The pool is closed
//     when the ping fails.
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	dsn := cfg.Postgres.URL
	if dsn == "" {
		dsn = cfg.Postgres.DSN()
	}

	db, err := sqlOpener("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	// flip log writes are serialized by the service
	db.SetMaxOpenConns(4)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres %s:%d: %w", cfg.Postgres.Host, cfg.Postgres.Port, err)
	}

	return db, nil
}

// postgresOpener is an indirection used by Open; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres
