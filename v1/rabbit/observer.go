package rabbit

import (
	"time"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// observeOperation reports a consume or publish operation when an observer is set.
func observeOperation(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "rabbit",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
