package mapping

import "errors"

var (
	// ErrInvalidArgument is returned when a required collaborator is nil or a
	// source has an unsupported shape.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMappingFailed is returned when a value cannot be assigned to a property,
	// or when a schema cannot be compiled into a converter.
	ErrMappingFailed = errors.New("mapping failed")
)
