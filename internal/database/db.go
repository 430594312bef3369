package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFileName = "teamconstructor.db"

// sqlite serializes writers; a small pool avoids busy errors
const (
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// migrations run in order; each index is the schema version it produces
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		test_result TEXT NOT NULL, -- base64 of [personalInfo, matrix]
		duration_ms INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_test_results_created ON test_results(created_at DESC)`,
}

var statements = map[string]string{
	stmtInsertResult: `INSERT INTO test_results (uid, email, full_name, test_result, duration_ms, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	stmtGetResult: `SELECT ` + resultColumns + ` FROM test_results WHERE id = ?`,
	stmtListResults: `SELECT ` + resultColumns + ` FROM test_results
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
}

// DB is the sqlite handle of the results store with its prepared statements
type DB struct {
	*sql.DB
	mu       sync.RWMutex
	prepared map[string]*sql.Stmt
}

// NewDB opens (or creates) the results database inside dataDir, brings the
// schema up to date and prepares the hot queries.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFileName)
	conn, err := sql.Open("sqlite3",
		fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	db := &DB{DB: conn, prepared: make(map[string]*sql.Stmt, len(statements))}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	slog.Info("Results database ready", "path", path, "schema_version", len(migrations))
	return db, nil
}

func (db *DB) init() error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping results database: %w", err)
	}
	if err := db.migrate(); err != nil {
		return fmt.Errorf("migrate results database: %w", err)
	}

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}
	return nil
}

// migrate applies the migrations newer than the stored user_version
func (db *DB) migrate() error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}

	for v := version; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		// PRAGMA does not take bind parameters
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			return err
		}
		slog.Debug("Applied migration", "version", v+1)
	}
	return nil
}

// GetPreparedStatement returns a statement prepared by NewDB
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stmt, ok := db.prepared[name]
	if !ok {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// GetPoolStats reports the sql.DB pool counters
func (db *DB) GetPoolStats() map[string]interface{} {
	s := db.Stats()
	return map[string]interface{}{
		"open_connections":     s.OpenConnections,
		"in_use":               s.InUse,
		"idle":                 s.Idle,
		"max_open_connections": s.MaxOpenConnections,
		"wait_count":           s.WaitCount,
		"wait_duration_ms":     s.WaitDuration.Milliseconds(),
	}
}

// Close releases the prepared statements, then the connection pool
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = map[string]*sql.Stmt{}

	return db.DB.Close()
}
