package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	godao "github.com/vincent3i/godao"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgreSQLAdapter implements the Adapter interface for PostgreSQL.
type PostgreSQLAdapter struct {
	*BaseSQLAdapter
}

// NewPostgreSQLAdapter creates a new PostgreSQL adapter.
func NewPostgreSQLAdapter() *PostgreSQLAdapter {
	return &PostgreSQLAdapter{
		BaseSQLAdapter: NewBaseSQLAdapter("postgres", "postgresql"),
	}
}

var _ Adapter = (*PostgreSQLAdapter)(nil)

// Connect establishes a connection to PostgreSQL.
func (a *PostgreSQLAdapter) Connect(ctx context.Context, config *godao.Config) (*sql.DB, error) {
	connStr := a.ConnectionString(config)
	return a.BaseSQLAdapter.Connect(ctx, config, connStr)
}

// ConnectionString constructs a PostgreSQL connection string.
func (a *PostgreSQLAdapter) ConnectionString(config *godao.Config) string {
	var parts []string

	if config.Host != "" {
		parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	}
	if config.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	}
	if config.Database != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))
	}
	if config.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", config.Username))
	}
	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))

	for key, value := range config.Options {
		parts = append(parts, fmt.Sprintf("%s=%s", key, value))
	}

	return strings.Join(parts, " ")
}

// Placeholder renders PostgreSQL's numbered bind parameters.
func (a *PostgreSQLAdapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// QuoteIdentifier quotes a PostgreSQL identifier.
func (a *PostgreSQLAdapter) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

// DefaultTxOptions returns PostgreSQL-specific transaction options.
func (a *PostgreSQLAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	}
}
