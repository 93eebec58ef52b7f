// Package observability defines the hook through which bushost components report
// the operations they perform. Metrics and tracing backends implement Observer;
// components accept it as an optional dependency and skip reporting when it is nil.
package observability

import "time"

// Observer receives a notification for every observed operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "bus", "rabbit" or "settings".
	Component string

	// Operation is the verb, e.g. "consume", "publish" or "resolve".
	Operation string

	// Resource is the primary target of the operation (queue, consumer type, schema).
	Resource string

	// SubResource carries optional extra detail such as a prefix or routing key.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the outcome; nil means success.
	Error error

	// Size is the payload size in bytes when it applies.
	Size int64

	// Metadata holds any additional attributes.
	Metadata map[string]interface{}
}

// Status maps the outcome to a short label suitable for metrics.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "success"
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
