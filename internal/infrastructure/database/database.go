package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions and filePermissions restrict journal data to the
	// owning user; payloads may carry anything the broker saw.
	dirPermissions  = 0750
	filePermissions = 0600

	// msPerSecond converts the configured busy timeout to driver units.
	msPerSecond = 1000

	// openVerifyTimeout bounds the ping that validates a fresh connection.
	openVerifyTimeout = 5 * time.Second
)

// Config holds the journal database settings, mapped from the journal
// section of config.yaml.
type Config struct {
	// Path is the SQLite file location. Its directory is created when
	// missing.
	Path string

	// BusyTimeout is how long a statement waits on a locked database,
	// in seconds.
	BusyTimeout int
}

// DB is the journal database handle. sql.DB is embedded, so callers use the
// standard query and exec methods directly; this type adds opening with the
// journal's pragmas, migrations and a health check.
type DB struct {
	*sql.DB
}

// Open opens the journal database, creating the file and its directory on
// first run.
//
// The database always runs in WAL mode: the journal is append-heavy while
// the status API reads concurrently, and WAL keeps readers off the writer's
// back. Foreign keys are enforced, and the pool is pinned to one connection
// because SQLite allows a single writer at a time.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db := &DB{DB: sqlDB}

	ctx, cancel := context.WithTimeout(context.Background(), openVerifyTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// Restrict the file to the owner. On a first run the file only appears
	// with the first write, so a missing file here is not an error.
	_ = os.Chmod(cfg.Path, filePermissions)

	return db, nil
}

// dsn builds the go-sqlite3 connection string carrying the pragmas the
// journal relies on. The configured busy timeout is in seconds; the driver
// expects milliseconds.
func dsn(cfg Config) string {
	return fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
}

// Close closes the connection pool during shutdown.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck verifies the database answers queries.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
