package settings

import "errors"

var (
	// ErrInvalidArgument is returned when a required collaborator is nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOperation is returned by every mutator of the read-only
	// PropertyKeyDictionary and its key and value collections.
	ErrUnsupportedOperation = errors.New("operation not supported on a read-only settings view")
)
