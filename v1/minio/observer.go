package minio

import (
	"time"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

func observeOperation(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "minio",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
