// Package adapter provides pluggable SQL backends. Each adapter knows how
// to open a connection from a Config, which bind-parameter style and
// identifier quoting its database uses, and how to classify its driver's
// errors.
package adapter

import (
	"context"
	"database/sql"

	godao "github.com/vincent3i/godao"
)

// Adapter represents a SQL database backend (PostgreSQL, MySQL, SQLite).
type Adapter interface {
	// Name returns the adapter's unique identifier.
	Name() string

	// Connect establishes a connection to the database.
	Connect(ctx context.Context, config *godao.Config) (*sql.DB, error)

	// ConnectionString builds the driver connection string from config.
	ConnectionString(config *godao.Config) string

	// Placeholder renders the n-th bind parameter, 1-based.
	Placeholder(n int) string

	// QuoteIdentifier quotes a table or column identifier.
	QuoteIdentifier(identifier string) string

	// DefaultTxOptions returns the backend's default transaction options.
	DefaultTxOptions() *sql.TxOptions

	// Error classification
	IsUniqueConstraintViolation(err error) bool
	IsForeignKeyViolation(err error) bool
	IsConnectionError(err error) bool

	// Close releases any resources held by the adapter.
	Close() error
}
