package kafka

import (
	"errors"
	"fmt"
	"net"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrInvalidSettings is returned for settings the transport cannot use.
	ErrInvalidSettings = errors.New("invalid kafka settings")

	// ErrNotStarted is returned by Publish before Start or after Stop.
	ErrNotStarted = errors.New("kafka bus is not started")

	// ErrTopicNotFound is returned when a topic or partition does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrAccessDenied is returned for authorization and SASL failures.
	ErrAccessDenied = errors.New("access denied")

	// ErrMessageTooLarge is returned when a message exceeds the broker limit.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrTemporary is returned for broker errors kafka marks as retriable.
	ErrTemporary = errors.New("temporary kafka error")

	// ErrNetworkError is returned for transport-level network failures.
	ErrNetworkError = errors.New("network error")
)

// TranslateError maps kafka and network errors to the sentinels above. Errors
// it does not recognise are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) {
		switch kafkaErr {
		case kafka.UnknownTopicOrPartition:
			return fmt.Errorf("%w: %w", ErrTopicNotFound, err)
		case kafka.TopicAuthorizationFailed, kafka.GroupAuthorizationFailed,
			kafka.ClusterAuthorizationFailed, kafka.SASLAuthenticationFailed:
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		case kafka.MessageSizeTooLarge:
			return fmt.Errorf("%w: %w", ErrMessageTooLarge, err)
		}
		if kafkaErr.Temporary() {
			return fmt.Errorf("%w: %w", ErrTemporary, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrNetworkError, err)
	}
	return err
}

// IsRetryableError reports whether err is likely to go away on its own.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrTemporary) || errors.Is(err, ErrNetworkError)
}
