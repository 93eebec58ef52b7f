// Package redis provides a configuration source backed by a Redis hash.
//
// Each field of the hash is one setting, named the way the settings providers
// look it up ("RabbitMQ.Host", "Endpoints.Orders.QueueName"). The hash is read
// with HGETALL into an in-memory snapshot; lookups only consult the snapshot.
// A failed refresh keeps the previous snapshot.
//
// Seeding the hash:
//
//	redis-cli HSET bushost:settings RabbitMQ.Host rabbit-0 Endpoints.Orders.QueueName orders
//
// Without fx:
//
//	source, err := redis.NewSource(redis.Config{Host: "redis"})
//	if err != nil {
//	    return err
//	}
//	if err := source.Refresh(ctx); err != nil {
//	    return err
//	}
//	provider, err := configuration.NewChainProvider(source, fileProvider)
package redis
