package rabbit

import (
	"errors"
	"fmt"
	"net"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Errors returned by the RabbitMQ transport. Broker errors are wrapped so
// both the sentinel and the original *amqp.Error match with errors.Is/As.
var (
	// ErrInvalidSettings is returned for settings that cannot produce a connection.
	ErrInvalidSettings = errors.New("invalid rabbitmq settings")

	// ErrConnectionFailed is returned when no broker endpoint could be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionClosed is returned when the broker closed the connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrChannelClosed is returned when a channel is used after it was closed.
	ErrChannelClosed = errors.New("channel closed")

	// ErrAccessDenied is returned when the user may not access a resource.
	ErrAccessDenied = errors.New("access denied")

	// ErrVirtualHostNotFound is returned when the virtual host does not exist.
	ErrVirtualHostNotFound = errors.New("virtual host not found")

	// ErrNotFound is returned when a queue or exchange does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrPreconditionFailed is returned when a queue exists with different arguments.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrResourceLocked is returned when an exclusive queue is in use elsewhere.
	ErrResourceLocked = errors.New("resource locked")

	// ErrMessageTooLarge is returned when a message exceeds the broker limit.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrNetworkError is returned for transport-level network failures.
	ErrNetworkError = errors.New("network error")

	// ErrNotStarted is returned by Publish before Start or after Stop.
	ErrNotStarted = errors.New("rabbitmq bus is not started")
)

// TranslateError maps broker and network errors to the sentinels above. Errors
// it does not recognise are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		if sentinel := amqpSentinel(amqpErr); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
		return err
	}

	if errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrChannelClosed, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrNetworkError, err)
	}
	return err
}

func amqpSentinel(err *amqp.Error) error {
	switch err.Code {
	case amqp.ConnectionForced:
		return ErrConnectionClosed
	case amqp.AccessRefused:
		return ErrAccessDenied
	case amqp.InvalidPath:
		return ErrVirtualHostNotFound
	case amqp.NotFound:
		return ErrNotFound
	case amqp.ResourceLocked:
		return ErrResourceLocked
	case amqp.PreconditionFailed:
		return ErrPreconditionFailed
	case amqp.ContentTooLarge:
		return ErrMessageTooLarge
	case amqp.ChannelError:
		return ErrChannelClosed
	default:
		return nil
	}
}

// IsRetryableError reports whether err is likely to go away on its own, such
// as a dropped connection.
func IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionClosed),
		errors.Is(err, ErrChannelClosed),
		errors.Is(err, ErrNetworkError):
		return true
	default:
		var amqpErr *amqp.Error
		return errors.As(err, &amqpErr) && amqpErr.Recover
	}
}
