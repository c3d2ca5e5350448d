package godao

import (
	"time"
)

// Config holds connection configuration shared by all SQL adapters.
type Config struct {
	// Basic connection info
	Type     string // adapter type (postgres, mysql, sqlite)
	Host     string
	Port     int
	Username string
	Password string
	Database string
	FilePath string // file-based backends (SQLite)
	SSLMode  string

	// Connection pooling
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Timeouts
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration

	// Backend-specific options
	Options map[string]string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            0, // adapter-specific default
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		ConnectTimeout:  30 * time.Second,
		QueryTimeout:    30 * time.Second,
		Options:         make(map[string]string),
	}
}

// Validate checks the configuration for the selected adapter type.
func (c *Config) Validate() error {
	switch c.Type {
	case "":
		return NewConfigErrorForField("Type", "adapter type is required")
	case "sqlite", "sqlite3":
		// FilePath may be empty; the adapter falls back to :memory:.
		return nil
	case "postgres", "postgresql", "mysql":
		if c.Database == "" {
			return NewConfigErrorForField("Database", "database name is required")
		}
		return nil
	default:
		// Custom adapters validate their own settings.
		return nil
	}
}
