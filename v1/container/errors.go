package container

import "errors"

var (
	// ErrInvalidArgument is returned when a required argument is nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotRegistered is returned by Resolve when no registration exists for a type.
	ErrNotRegistered = errors.New("service not registered")

	// ErrScopeClosed is returned when resolving from a scope that was already closed.
	ErrScopeClosed = errors.New("scope closed")

	// ErrTypeMismatch is returned when a factory produced a value that is not
	// assignable to the registered type.
	ErrTypeMismatch = errors.New("resolved value has unexpected type")
)
