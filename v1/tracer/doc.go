// Package tracer wraps the OpenTelemetry SDK for bushost.
//
// The bus opens one span per consumed message through the bus.Tracer
// interface, and transports copy the trace context into message headers with
// GetCarrier and restore it on receipt with SetCarrierOnContext, so a consume
// span continues the trace of the publisher.
package tracer
