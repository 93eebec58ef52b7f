package postgres

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultTable holds the settings when Config.Table is empty.
const DefaultTable = "bus_settings"

// Config describes the database and table settings are read from.
type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails

	// Table has a text primary key column "name" and a text column "value".
	Table string

	// AutoMigrate creates the table when it does not exist.
	AutoMigrate bool
}

// Connection holds the connection parameters.
type Connection struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string
	SSLMode  string
}

// ConnectionDetails tunes the connection pool.
type ConnectionDetails struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate reports configurations that cannot be used.
func (c Config) Validate() error {
	if c.Connection.Host == "" {
		return fmt.Errorf("postgres: host is required: %w", ErrInvalidConfig)
	}
	if c.Connection.DbName == "" {
		return fmt.Errorf("postgres: database name is required: %w", ErrInvalidConfig)
	}
	if c.Table != "" && !tableName.MatchString(c.Table) {
		return fmt.Errorf("postgres: invalid table name %q: %w", c.Table, ErrInvalidConfig)
	}
	return nil
}

func (c Config) table() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// DSN returns the key/value connection string.
func (c Connection) DSN() string {
	port := c.Port
	if port == "" {
		port = "5432"
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.DbName, sslMode)
}

// Logger is the logging surface of this package. It is satisfied by *logger.Logger.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
}
