package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated Prometheus registry, the HTTP server exposing it,
// and the operation metrics fed by observability.OperationContext reports.
type Metrics struct {
	// Server serves the registry at /metrics.
	Server *http.Server

	// Registry holds every metric of this service.
	Registry *prometheus.Registry

	registerer prometheus.Registerer

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationBytes    *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the operation metrics (and the
// default collectors when enabled) and prepares, but does not start, the HTTP
// server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "orders"})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// every metric carries service="<cfg.ServiceName>"
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	labels := []string{"component", "operation", "resource", "status"}
	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
		operationsTotal: createCounterVec("bushost_operations_total",
			"Total number of observed operations", labels),
		operationDuration: createHistogramVec("bushost_operation_duration_seconds",
			"Duration of observed operations in seconds", labels, prometheus.DefBuckets),
		operationBytes: createCounterVec("bushost_operation_bytes_total",
			"Payload bytes processed by observed operations", labels),
	}

	wrapped.MustRegister(m.operationsTotal, m.operationDuration, m.operationBytes)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
