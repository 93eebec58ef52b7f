// Package metrics exposes Prometheus metrics for bushost services.
//
// *Metrics implements observability.Observer: every operation reported by the
// bus (one per consumed message) increments bushost_operations_total and is
// recorded in bushost_operation_duration_seconds, labelled by component,
// operation, resource and status. Applications can register their own
// collectors on the same registry with CreateCounter, CreateHistogram and
// CreateGauge. The registry is served at /metrics on Config.Address.
package metrics
