package adapter

import (
	"context"
	"database/sql"
	"strings"

	godao "github.com/vincent3i/godao"
)

// BaseSQLAdapter provides the connection plumbing and error classification
// shared by all SQL adapters.
type BaseSQLAdapter struct {
	db         *sql.DB
	driverName string
	name       string
}

func NewBaseSQLAdapter(driverName, name string) *BaseSQLAdapter {
	return &BaseSQLAdapter{
		driverName: driverName,
		name:       name,
	}
}

// Name returns the adapter name.
func (a *BaseSQLAdapter) Name() string {
	return a.name
}

// Connect opens a database connection, configures pooling and verifies it
// with a ping.
func (a *BaseSQLAdapter) Connect(ctx context.Context, config *godao.Config, connectionString string) (*sql.DB, error) {
	db, err := sql.Open(a.driverName, connectionString)
	if err != nil {
		return nil, godao.WrapConnectionError(err, "connect", a.driverName, config.Host)
	}

	a.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, godao.WrapConnectionError(err, "ping", a.driverName, config.Host)
	}

	a.db = db
	return db, nil
}

func (a *BaseSQLAdapter) configureConnectionPool(db *sql.DB, config *godao.Config) {
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}
}

// Close closes the database connection.
func (a *BaseSQLAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// DB returns the underlying database connection.
func (a *BaseSQLAdapter) DB() *sql.DB {
	return a.db
}

// DefaultTxOptions returns the common default. Adapters override where
// their database differs.
func (a *BaseSQLAdapter) DefaultTxOptions() *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	}
}

func (a *BaseSQLAdapter) IsConnectionError(err error) bool {
	return matchesAny(err,
		"connection refused",
		"connection reset",
		"connection closed",
		"network is unreachable",
		"timeout",
		"driver: bad connection",
	)
}

func (a *BaseSQLAdapter) IsUniqueConstraintViolation(err error) bool {
	return matchesAny(err,
		"unique constraint",
		"duplicate key",
		"duplicate entry",
	)
}

func (a *BaseSQLAdapter) IsForeignKeyViolation(err error) bool {
	return matchesAny(err,
		"foreign key constraint",
		"violates foreign key",
	)
}

func matchesAny(err error, patterns ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
