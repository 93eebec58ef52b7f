package bus

import (
	"fmt"
	"runtime"

	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// DefaultConsumerLimit is the concurrency of endpoints whose settings do not
// set ConsumerLimit.
var DefaultConsumerLimit = runtime.NumCPU() * 4

// EndpointSettings configures one receive endpoint.
type EndpointSettings struct {
	QueueName     string
	ConsumerLimit *int
}

// Limit returns ConsumerLimit, or DefaultConsumerLimit when it is unset or not positive.
func (s EndpointSettings) Limit() int {
	if s.ConsumerLimit == nil || *s.ConsumerLimit <= 0 {
		return DefaultConsumerLimit
	}
	return *s.ConsumerLimit
}

// EndpointSettingsSchema maps the keys QueueName and ConsumerLimit.
var EndpointSettingsSchema = mapping.NewSchema("EndpointSettings",
	mapping.String("QueueName", func(s *EndpointSettings, v string) { s.QueueName = v }),
	mapping.OptionalInt("ConsumerLimit", func(s *EndpointSettings, v *int) { s.ConsumerLimit = v }),
)

// ConsumerEndpoint is an EndpointSpecification that hands every message
// received on its queue to a consumer of type C.
type ConsumerEndpoint[C Consumer] struct {
	queueName     string
	consumerLimit int
	factory       ConsumerFactory[C]
}

// NewConsumerEndpoint returns an endpoint for settings. QueueName is required.
func NewConsumerEndpoint[C Consumer](settings EndpointSettings, factory ConsumerFactory[C]) (*ConsumerEndpoint[C], error) {
	if factory == nil {
		return nil, fmt.Errorf("bus: consumer factory is required: %w", ErrInvalidArgument)
	}
	if settings.QueueName == "" {
		return nil, fmt.Errorf("bus: endpoint for %T has no queue name: %w", *new(C), ErrEndpointNotConfigured)
	}
	return &ConsumerEndpoint[C]{
		queueName:     settings.QueueName,
		consumerLimit: settings.Limit(),
		factory:       factory,
	}, nil
}

func (e *ConsumerEndpoint[C]) QueueName() string  { return e.queueName }
func (e *ConsumerEndpoint[C]) ConsumerLimit() int { return e.consumerLimit }

func (e *ConsumerEndpoint[C]) Configure(ec EndpointConfigurator) {
	ec.Handle(ConsumerHandler[C](e.factory))
}
