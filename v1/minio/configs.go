package minio

import "fmt"

// Config describes where the settings document is stored.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string

	// Bucket and ObjectKey locate the YAML settings document.
	Bucket    string
	ObjectKey string

	// SectionName overrides the document's default section ("appSettings").
	SectionName string
}

// Validate reports missing required fields.
func (c Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return fmt.Errorf("minio: endpoint is required: %w", ErrInvalidConfig)
	case c.Bucket == "":
		return fmt.Errorf("minio: bucket is required: %w", ErrInvalidConfig)
	case c.ObjectKey == "":
		return fmt.Errorf("minio: object key is required: %w", ErrInvalidConfig)
	}
	return nil
}

// Logger is the logging surface of this package. It is satisfied by *logger.Logger.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
}
