package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// DB wraps the SQLite database with separate writer and reader pools.
// The writer pool is limited to a single connection so concurrent writes
// queue in Go instead of failing with SQLITE_BUSY; the reader pool allows
// parallel queries under WAL mode.
type DB struct {
	writer   *sql.DB
	reader   *sql.DB
	path     string
	cacheTTL time.Duration // Cache time-to-live for catalog data
}

// New creates a new database connection pair and initializes the schema.
// cacheTTL specifies how long cached catalog data remains valid before expiring.
func New(ctx context.Context, dbPath string, cacheTTL time.Duration) (*DB, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	writer, err := sql.Open("sqlite", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetConnMaxLifetime(time.Hour)

	var reader *sql.DB
	if dbPath == ":memory:" {
		// Every new connection to :memory: opens a fresh empty database,
		// so the reader must share the writer's single connection.
		reader = writer
	} else {
		reader, err = sql.Open("sqlite", buildDSN(dbPath))
		if err != nil {
			_ = writer.Close()
			return nil, fmt.Errorf("failed to open reader pool: %w", err)
		}
		reader.SetMaxOpenConns(10)
		reader.SetMaxIdleConns(5)
		reader.SetConnMaxLifetime(time.Hour)
	}

	db := &DB{
		writer:   writer,
		reader:   reader,
		path:     dbPath,
		cacheTTL: cacheTTL,
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// buildDSN appends the pragmas every connection needs. Pragmas set via the
// DSN apply to each pooled connection, unlike a one-off Exec("PRAGMA ...").
func buildDSN(dbPath string) string {
	return dbPath +
		"?_pragma=busy_timeout(30000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=synchronous(NORMAL)"
}

// Close closes both connection pools
func (db *DB) Close() error {
	var firstErr error
	if db.writer != nil {
		if err := db.writer.Close(); err != nil {
			firstErr = err
		}
	}
	if db.reader != nil && db.reader != db.writer {
		if err := db.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Reader returns the reader connection pool for read operations
func (db *DB) Reader() *sql.DB {
	return db.reader
}

// Writer returns the writer connection pool for write operations
func (db *DB) Writer() *sql.DB {
	return db.writer
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.reader.PingContext(ctx)
}

// Ready checks that the database can serve queries. It runs a real query
// against the schema, which catches a missing or corrupt database file
// that a bare ping would not.
func (db *DB) Ready(ctx context.Context) error {
	var n int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM faculties`).Scan(&n); err != nil {
		return fmt.Errorf("readiness query: %w", err)
	}
	return nil
}

// GetCacheTTL returns the configured cache TTL
func (db *DB) GetCacheTTL() time.Duration {
	return db.cacheTTL
}

// getTTLTimestamp returns the Unix timestamp for TTL cutoff (entries older
// than this are expired). Helper to avoid repeating the same calculation
// across repository methods.
func (db *DB) getTTLTimestamp() int64 {
	return time.Now().Unix() - int64(db.cacheTTL.Seconds())
}

// ExecBatchContext runs fn with a prepared statement inside a single
// transaction on the writer pool. Batching writes this way reduces lock
// contention during catalog refresh.
func (db *DB) ExecBatchContext(ctx context.Context, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch statement: %w", err)
	}

	if err := fn(stmt); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close batch statement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch transaction: %w", err)
	}
	return nil
}

// SwapConnections replaces this DB's connections with newDB's and returns
// the old ones so the caller can close them after in-flight queries drain.
// The caller must hold whatever lock guards access to this DB.
func (db *DB) SwapConnections(newDB *DB) (oldWriter, oldReader *sql.DB, oldPath string) {
	oldWriter, oldReader, oldPath = db.writer, db.reader, db.path
	if oldReader == oldWriter {
		oldReader = nil
	}

	db.writer = newDB.writer
	db.reader = newDB.reader
	db.path = newDB.path
	db.cacheTTL = newDB.cacheTTL
	return oldWriter, oldReader, oldPath
}

// CreateSnapshot writes a consistent copy of the database to destPath using
// VACUUM INTO. The copy is a plain single-file database with no WAL sidecars,
// safe to compress and upload while writers continue. destPath must not
// already exist.
func (db *DB) CreateSnapshot(ctx context.Context, destPath string) error {
	if _, err := db.writer.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// CountExpiringPrograms counts programs older than softTTL that have not
// hard-expired yet. The metrics updater reports them as stale rows.
func (db *DB) CountExpiringPrograms(ctx context.Context, softTTL time.Duration) (int, error) {
	// Count entries where: softTTL <= age < hardTTL
	softTimestamp := time.Now().Unix() - int64(softTTL.Seconds())
	hardTimestamp := db.getTTLTimestamp()

	query := `SELECT COUNT(*) FROM programs WHERE cached_at <= ? AND cached_at > ?`
	var count int
	if err := db.reader.QueryRowContext(ctx, query, softTimestamp, hardTimestamp).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expiring programs: %w", err)
	}
	return count, nil
}

// CountExpiringCurriculum counts curriculum rows older than softTTL that
// have not hard-expired yet.
func (db *DB) CountExpiringCurriculum(ctx context.Context, softTTL time.Duration) (int, error) {
	softTimestamp := time.Now().Unix() - int64(softTTL.Seconds())
	hardTimestamp := db.getTTLTimestamp()

	query := `SELECT COUNT(*) FROM curriculum WHERE cached_at <= ? AND cached_at > ?`
	var count int
	if err := db.reader.QueryRowContext(ctx, query, softTimestamp, hardTimestamp).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expiring curriculum: %w", err)
	}
	return count, nil
}

// NewTestDB creates an in-memory database for testing.
// This ensures consistent test data isolation across all test files.
// Uses a default 7-day TTL.
func NewTestDB() (*DB, error) {
	return New(context.Background(), ":memory:", 168*time.Hour)
}
