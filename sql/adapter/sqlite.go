package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	godao "github.com/vincent3i/godao"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteAdapter implements the Adapter interface for SQLite.
type SQLiteAdapter struct {
	db *sql.DB
}

// NewSQLiteAdapter creates a new SQLite adapter.
func NewSQLiteAdapter() *SQLiteAdapter {
	return &SQLiteAdapter{}
}

var _ Adapter = (*SQLiteAdapter)(nil)

// Name returns the adapter name.
func (a *SQLiteAdapter) Name() string {
	return "sqlite"
}

// Connect establishes a connection to SQLite.
func (a *SQLiteAdapter) Connect(ctx context.Context, config *godao.Config) (*sql.DB, error) {
	connStr := a.ConnectionString(config)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, godao.WrapConnectionError(err, "connect", "sqlite3", connStr)
	}

	// SQLite works best with a single connection for writes
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(1)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, godao.WrapConnectionError(err, "ping", "sqlite3", connStr)
	}

	// Foreign keys are disabled by default in SQLite
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, godao.WrapConnectionError(err, "pragma", "sqlite3", connStr)
	}

	a.db = db
	return db, nil
}

// ConnectionString constructs a SQLite connection string. The database is
// addressed by file path; an empty path opens an in-memory database.
func (a *SQLiteAdapter) ConnectionString(config *godao.Config) string {
	dbPath := config.FilePath
	if dbPath == "" {
		dbPath = ":memory:"
	} else if !filepath.IsAbs(dbPath) && !strings.HasPrefix(dbPath, ":") {
		dbPath = filepath.Clean(dbPath)
	}

	var params []string
	for key, value := range config.Options {
		params = append(params, fmt.Sprintf("%s=%s", key, value))
	}

	if len(params) > 0 {
		return fmt.Sprintf("%s?%s", dbPath, strings.Join(params, "&"))
	}
	return dbPath
}

// Placeholder renders SQLite's positional bind parameters.
func (a *SQLiteAdapter) Placeholder(n int) string {
	return "?"
}

// QuoteIdentifier quotes a SQLite identifier.
func (a *SQLiteAdapter) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

// DefaultTxOptions returns default transaction options for SQLite.
func (a *SQLiteAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: sql.LevelSerializable, // SQLite default
		ReadOnly:  false,
	}
}

// IsUniqueConstraintViolation checks if an error is a unique constraint violation.
func (a *SQLiteAdapter) IsUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// IsForeignKeyViolation checks if an error is a foreign key violation.
func (a *SQLiteAdapter) IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// IsConnectionError checks if an error is a connection-related error.
func (a *SQLiteAdapter) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database schema has changed") ||
		strings.Contains(errStr, "no such file") ||
		strings.Contains(errStr, "unable to open database")
}

// Close releases resources held by the adapter.
func (a *SQLiteAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
