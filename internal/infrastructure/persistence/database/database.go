// Package database provides the SQL connection used by the repositories,
// supporting both local SQLite files and remote libsql/Turso databases.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// Database wraps the SQL connection with slow-query instrumentation
type Database struct {
	Conn   *sql.DB
	driver string
	logger *logging.ChanneledLogger
}

// NewDatabase opens the connection configured via DB_DRIVER and DB_PATH.
// For sqlite3 the path is a local file; for libsql it is the database URL
// including the auth token.
func NewDatabase(logger *logging.ChanneledLogger) (*Database, error) {
	var dsn string
	switch config.DBDriver {
	case "sqlite3":
		dsn = config.DBPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	case "libsql":
		dsn = config.DBPath
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.DBDriver)
	}

	conn, err := sql.Open(config.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConns)
	conn.SetMaxIdleConns(config.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Database().Info("Database connection established",
		slog.String("driver", config.DBDriver),
		slog.Int("maxOpenConns", config.DBMaxOpenConns))

	return &Database{
		Conn:   conn,
		driver: config.DBDriver,
		logger: logger,
	}, nil
}

// Query runs a read statement, logging it when it crosses the slow-query
// threshold.
func (d *Database) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	d.observe(query, time.Since(start))
	return rows, err
}

// QueryRow runs a single-row read with slow-query instrumentation
func (d *Database) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := d.Conn.QueryRowContext(ctx, query, args...)
	d.observe(query, time.Since(start))
	return row
}

// Exec runs a write statement with slow-query instrumentation
func (d *Database) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := d.Conn.ExecContext(ctx, query, args...)
	d.observe(query, time.Since(start))
	return result, err
}

func (d *Database) observe(query string, duration time.Duration) {
	if duration > config.SlowQueryThreshold && d.logger != nil {
		d.logger.LogSlowQuery(query, duration)
	}
}

// Driver reports the active driver name
func (d *Database) Driver() string {
	return d.driver
}

// Health verifies the connection is alive
func (d *Database) Health(ctx context.Context) error {
	return d.Conn.PingContext(ctx)
}

// Close shuts the connection pool down
func (d *Database) Close() error {
	if d.logger != nil {
		d.logger.Database().Info("Database connection closing")
	}
	return d.Conn.Close()
}
