package redis

import (
	"time"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

func observeOperation(observer observability.Observer, operation, resource string, duration time.Duration, err error, size int64) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component: "redis",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
