package redis

import "errors"

var (
	// ErrInvalidConfig is returned for configurations that cannot be used.
	ErrInvalidConfig = errors.New("invalid redis config")

	// ErrSourceClosed is returned by Refresh after Close.
	ErrSourceClosed = errors.New("redis settings source is closed")
)
