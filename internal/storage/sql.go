package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported SQL drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Schema creates the filter set table. It is valid for both MySQL and SQLite.
const Schema = `CREATE TABLE IF NOT EXISTS filter_sets (
	run_id   VARCHAR(191) NOT NULL,
	position INTEGER      NOT NULL,
	test_id  VARCHAR(1024) NOT NULL,
	PRIMARY KEY (run_id, position)
)`

// SQLBackend stores filter sets as one row per (run id, test id)
type SQLBackend struct {
	db *sql.DB
}

// OpenSQL opens driver/dsn and makes sure the schema exists.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLBackend, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	if driver == DriverSQLite {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer keeps the embedded database consistent
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	b := NewSQLBackend(db)
	if err := b.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// ensureSQLiteDir creates the directory of a plain file DSN
func ensureSQLiteDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	return nil
}

// NewSQLBackend wraps an open database. The caller owns schema creation.
func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// EnsureSchema creates the filter_sets table when missing
func (b *SQLBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create filter_sets: %w", err)
	}
	return nil
}

// Load implements Backend
func (b *SQLBackend) Load(ctx context.Context, runID string) ([]string, bool, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT test_id FROM filter_sets WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, false, fmt.Errorf("query filter set: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, false, fmt.Errorf("scan filter set: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate filter set: %w", err)
	}
	return ids, len(ids) > 0, nil
}

// Save implements Backend. The replace runs in one transaction.
func (b *SQLBackend) Save(ctx context.Context, runID string, ids []string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM filter_sets WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clear filter set: %w", err)
	}
	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO filter_sets (run_id, position, test_id) VALUES (?, ?, ?)", runID, pos, id); err != nil {
			return fmt.Errorf("insert filter id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete implements Backend
func (b *SQLBackend) Delete(ctx context.Context, runID string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM filter_sets WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("delete filter set: %w", err)
	}
	return nil
}

// RunIDs implements Backend
func (b *SQLBackend) RunIDs(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT DISTINCT run_id FROM filter_sets ORDER BY run_id")
	if err != nil {
		return nil, fmt.Errorf("query run ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close implements Backend
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

// MySQLDSN builds a DSN for the filter database from connection settings.
// An empty database name yields a server-level DSN.
func MySQLDSN(host, port, user, password, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
