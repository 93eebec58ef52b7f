package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// Collector is the metrics surface offered to applications.
//
// This interface is implemented by the concrete *Metrics type.
type Collector interface {
	observability.Observer

	// CreateCounter registers and returns a new counter vector.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram registers and returns a new histogram vector.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge registers and returns a new gauge vector.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
