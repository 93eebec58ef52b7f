package postgres

import (
	"time"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

func observeOperation(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "postgres",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
	})
}
