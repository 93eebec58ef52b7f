// Package rabbit is the RabbitMQ transport of the bus.
//
// Every receive endpoint consumes a durable queue of the same name on its own
// AMQP channel. The prefetch count and the number of worker goroutines both
// equal the endpoint's consumer limit, so the broker never hands an endpoint
// more messages than it can work on. A message is acknowledged when all
// handlers return nil and rejected without requeue otherwise; dead-lettering
// is left to the queue policy.
//
// Publish sends through the default exchange, so the destination is the queue
// name. Messages are persistent and get a ULID when they carry no ID. When a
// tracer is configured the trace context travels in the message headers.
//
// Configuration (keys under "RabbitMQ."):
//
//	Host, Port, VirtualHost, Username, Password, Heartbeat,
//	ClusterMembers, IsSSLEnabled, UseCert, CACertPath,
//	ClientCertPath, ClientKeyPath, ServerName, ContentType
//
// Registration without fx:
//
//	services := container.NewCollection()
//	_ = rabbit.AddRabbitMq(services, func(s *rabbit.Settings) {
//	    s.Heartbeat = 5 * time.Second
//	})
//
// With fx, include rabbit.FXModule next to hosting.FXModule.
package rabbit
