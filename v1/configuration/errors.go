package configuration

import "errors"

var (
	// ErrInvalidArgument is returned for nil sources and empty paths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDocument is returned when a settings file cannot be parsed.
	ErrInvalidDocument = errors.New("invalid settings document")
)
