package bus

import "fmt"

// BusServiceConfigurator applies service specifications, then endpoint
// specifications, then bus observers, in registration order.
type BusServiceConfigurator struct {
	services  []ServiceSpecification
	endpoints []EndpointSpecification
	observers []Observer
	logger    Logger
}

// NewBusServiceConfigurator returns a configurator over the given
// registrations. Nil entries are skipped.
func NewBusServiceConfigurator(logger Logger, services []ServiceSpecification, endpoints []EndpointSpecification, observers []Observer) (*BusServiceConfigurator, error) {
	if logger == nil {
		return nil, fmt.Errorf("bus: logger is required: %w", ErrInvalidArgument)
	}
	c := &BusServiceConfigurator{logger: logger}
	for _, s := range services {
		if s != nil {
			c.services = append(c.services, s)
		}
	}
	for _, e := range endpoints {
		if e != nil {
			c.endpoints = append(c.endpoints, e)
		}
	}
	for _, o := range observers {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
	return c, nil
}

func (c *BusServiceConfigurator) Configure(cfg Configurator) error {
	if cfg == nil {
		return fmt.Errorf("bus: configurator is required: %w", ErrInvalidArgument)
	}

	for _, s := range c.services {
		c.logger.Info("Configuring Service", nil, map[string]interface{}{
			"service": fmt.Sprintf("%T", s),
		})
		if err := s.Configure(cfg); err != nil {
			return fmt.Errorf("bus: configuring service %T: %w", s, err)
		}
	}

	for _, e := range c.endpoints {
		c.logger.Info("Configuring Endpoint", nil, map[string]interface{}{
			"queue":          e.QueueName(),
			"consumer_limit": e.ConsumerLimit(),
			"endpoint":       fmt.Sprintf("%T", e),
		})
		cfg.ReceiveEndpoint(e.QueueName(), e.ConsumerLimit(), e.Configure)
	}

	for _, o := range c.observers {
		c.logger.Info("Configuring Bus Observer", nil, map[string]interface{}{
			"observer": fmt.Sprintf("%T", o),
		})
		cfg.BusObserver(o)
	}

	return nil
}
