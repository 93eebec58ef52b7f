// Package bus connects a message bus transport to the service container.
//
// Transports implement HostFactory. At startup a ServiceHost opens a container
// scope, resolves the HostFactory and the ServiceConfigurator and starts the
// bus through a BusProvider. The configurator declares one receive endpoint per
// registered EndpointSpecification.
//
// Consumers are resolved per message: a ResolvingConsumerFactory opens a new
// scope for every delivery, resolves the consumer from it, attaches the scope
// to the consume context and closes it once the consumer returns. Anything the
// consumer resolved from the scope is closed with it.
//
//	services := container.NewCollection()
//	hosting.AddBusHosting(services)
//	_ = bus.AddConsumer(services, "Endpoints.Orders.", func(r container.Resolver) (*OrderConsumer, error) {
//	    db, err := container.Resolve[*OrderStore](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &OrderConsumer{store: db}, nil
//	})
package bus
