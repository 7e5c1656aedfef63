package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"stf/internal/config"
	"stf/internal/storage"
)

// DatabaseManager creates the MySQL database holding filter sets
type DatabaseManager struct {
	config *config.Config
	logger *zap.Logger
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config, logger *zap.Logger) *DatabaseManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseManager{config: cfg, logger: logger}
}

// EnsureDatabase connects to the server named by the DB_* settings and
// creates the configured database when it does not exist. It reports
// whether the database was created.
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context) (bool, error) {
	db := dm.config.Database
	name := db.Name
	if !isValidDatabaseName(name) {
		return false, fmt.Errorf("invalid database name: %s", name)
	}

	// Connect to MySQL server (without specifying database)
	conn, err := sql.Open(storage.DriverMySQL, storage.MySQLDSN(db.Host, db.Port, db.Username, db.Password, ""))
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := databaseExists(ctx, conn, name)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return false, nil
	}

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	dm.logger.Info("created filter database", zap.String("database", name), zap.String("host", db.Host))
	return true, nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// isValidDatabaseName accepts names that are safe to quote with backticks
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '$':
		default:
			return false
		}
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if upper == word {
			return false
		}
	}
	return true
}
