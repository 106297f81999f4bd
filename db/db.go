package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ar-model-dashboard/config"
)

// Dialect selects the SQL flavour of the schema statements
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Open opens the database described by cfg and verifies the connection.
// The returned handle is owned by the caller and must be closed with Close.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, Dialect, error) {
	var (
		conn    *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case config.DriverPgx:
		dialect = Postgres
		conn, err = sql.Open("pgx", cfg.URL)
	case config.DriverSQLite:
		dialect = SQLite
		conn, err = OpenSQLite(cfg.SQLitePath)
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("✓ Database connection established successfully (%s)", dialect)
	return conn, dialect, nil
}

// OpenSQLite opens a SQLite database. path may be ":memory:".
// SQLite allows one writer, so the pool is limited to a single connection;
// this also keeps an in-memory database alive across calls.
func OpenSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	return conn, nil
}

// Close closes the database connection
func Close(conn *sql.DB) error {
	if conn != nil {
		return conn.Close()
	}
	return nil
}
