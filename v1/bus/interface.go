package bus

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Bus publishes messages.
type Bus interface {
	// Address identifies the bus instance, usually the broker URL without credentials.
	Address() string

	// Publish sends msg to destination, a queue or topic name.
	Publish(ctx context.Context, destination string, msg Message) error
}

// Control is a Bus whose lifetime is managed by its owner.
type Control interface {
	Bus
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HostFactory creates a bus for a transport. serviceName may be empty.
//
// This interface is implemented by the transport packages (rabbit, kafka).
type HostFactory interface {
	CreateBus(configurator ServiceConfigurator, serviceName string) (Control, error)
}

// ServiceConfigurator applies the application's endpoints and observers to a
// transport's Configurator while the bus is being created.
//
// This interface is implemented by the concrete *BusServiceConfigurator type.
type ServiceConfigurator interface {
	Configure(cfg Configurator) error
}

// Configurator is the transport side of bus creation.
type Configurator interface {
	// ReceiveEndpoint declares an input queue consumed by at most consumerLimit
	// concurrent handlers. configure registers the endpoint's handlers.
	ReceiveEndpoint(queueName string, consumerLimit int, configure func(EndpointConfigurator))

	// BusObserver attaches a lifecycle observer.
	BusObserver(o Observer)
}

// EndpointConfigurator configures one receive endpoint.
type EndpointConfigurator interface {
	InputAddress() string
	Handle(h Handler)
}

// Handler processes one message received on an endpoint. A returned error
// rejects the message.
type Handler func(ctx context.Context, cc ConsumeContext) error

// ServiceSpecification contributes bus-wide configuration.
type ServiceSpecification interface {
	Configure(cfg Configurator) error
}

// EndpointSpecification describes one receive endpoint.
type EndpointSpecification interface {
	QueueName() string
	ConsumerLimit() int
	Configure(ec EndpointConfigurator)
}

// Consumer handles messages delivered to its endpoint. Consumers are resolved
// from a fresh container scope for every message.
type Consumer interface {
	Consume(ctx context.Context, cc ConsumeContext) error
}

// Observer is notified about the bus lifecycle. Embed NopObserver to
// implement only some of the callbacks.
type Observer interface {
	PostCreate(b Bus)
	CreateFaulted(err error)
	PreStart(b Bus)
	PostStart(b Bus)
	StartFaulted(b Bus, err error)
	PreStop(b Bus)
	PostStop(b Bus)
	StopFaulted(b Bus, err error)
}

// Tracer opens consume spans. It is satisfied by *tracer.Tracer.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
}
