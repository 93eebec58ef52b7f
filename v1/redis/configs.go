package redis

import (
	"fmt"
	"time"
)

// DefaultKey is the hash settings are loaded from when Config.Key is empty.
const DefaultKey = "bushost:settings"

// Config holds the Redis connection and the hash to read settings from.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int

	// Key names the hash whose fields are setting names, e.g. "RabbitMQ.Host".
	Key string

	// RefreshInterval reloads the hash periodically while the application
	// runs. Zero loads it once.
	RefreshInterval time.Duration

	DialTimeout time.Duration
	ReadTimeout time.Duration

	TLS TLSConfig
}

// TLSConfig contains the TLS options for the Redis connection.
type TLSConfig struct {
	Enabled            bool
	CACertPath         string
	ClientCertPath     string
	ClientKeyPath      string
	InsecureSkipVerify bool

	// ServerName defaults to Host.
	ServerName string
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	return c
}

// Validate reports configurations that cannot be used.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("redis: port %d out of range: %w", c.Port, ErrInvalidConfig)
	}
	if c.DB < 0 {
		return fmt.Errorf("redis: negative DB: %w", ErrInvalidConfig)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("redis: negative refresh interval: %w", ErrInvalidConfig)
	}
	return nil
}

// Logger is the logging surface of this package. It is satisfied by *logger.Logger.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
