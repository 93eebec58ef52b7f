package bus

import "errors"

var (
	// ErrInvalidArgument is returned when a required collaborator is nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDisposed is returned when the bus is used after it was shut down.
	ErrDisposed = errors.New("bus has been disposed")

	// ErrNotStarted is returned by ServiceHost.Bus before Start.
	ErrNotStarted = errors.New("bus host is not started")

	// ErrEndpointNotConfigured is returned when no endpoint settings exist
	// under the prefix a consumer was registered with.
	ErrEndpointNotConfigured = errors.New("receive endpoint is not configured")
)
