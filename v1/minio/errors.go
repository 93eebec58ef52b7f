package minio

import "errors"

var (
	// ErrInvalidConfig is returned when the configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid minio config")

	// ErrObjectNotFound is returned when the settings document does not exist.
	ErrObjectNotFound = errors.New("settings object not found")
)
