package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	godao "github.com/vincent3i/godao"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLAdapter implements the Adapter interface for MySQL.
type MySQLAdapter struct {
	*BaseSQLAdapter
}

// NewMySQLAdapter creates a new MySQL adapter.
func NewMySQLAdapter() *MySQLAdapter {
	return &MySQLAdapter{
		BaseSQLAdapter: NewBaseSQLAdapter("mysql", "mysql"),
	}
}

var _ Adapter = (*MySQLAdapter)(nil)

// Connect establishes a connection to MySQL.
func (a *MySQLAdapter) Connect(ctx context.Context, config *godao.Config) (*sql.DB, error) {
	connStr := a.ConnectionString(config)
	return a.BaseSQLAdapter.Connect(ctx, config, connStr)
}

// ConnectionString constructs a MySQL connection string.
// Format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (a *MySQLAdapter) ConnectionString(config *godao.Config) string {
	var connStr strings.Builder

	if config.Username != "" {
		connStr.WriteString(config.Username)
		if config.Password != "" {
			connStr.WriteString(":")
			connStr.WriteString(config.Password)
		}
		connStr.WriteString("@")
	}

	if config.Host != "" || config.Port > 0 {
		connStr.WriteString("tcp(")
		if config.Host != "" {
			connStr.WriteString(config.Host)
		} else {
			connStr.WriteString("localhost")
		}
		if config.Port > 0 {
			connStr.WriteString(fmt.Sprintf(":%d", config.Port))
		}
		connStr.WriteString(")")
	}

	connStr.WriteString("/")
	if config.Database != "" {
		connStr.WriteString(config.Database)
	}

	// parseTime is required for proper time.Time scanning
	params := []string{"parseTime=true"}

	hasCharset := false
	for key := range config.Options {
		if strings.ToLower(key) == "charset" {
			hasCharset = true
			break
		}
	}
	if !hasCharset {
		params = append(params, "charset=utf8mb4")
	}

	for key, value := range config.Options {
		params = append(params, fmt.Sprintf("%s=%s", key, value))
	}

	connStr.WriteString("?")
	connStr.WriteString(strings.Join(params, "&"))

	return connStr.String()
}

// Placeholder renders MySQL's positional bind parameters.
func (a *MySQLAdapter) Placeholder(n int) string {
	return "?"
}

// QuoteIdentifier quotes a MySQL identifier.
func (a *MySQLAdapter) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(identifier, "`", "``"))
}

// DefaultTxOptions returns MySQL-specific transaction options.
func (a *MySQLAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead, // MySQL default
		ReadOnly:  false,
	}
}
