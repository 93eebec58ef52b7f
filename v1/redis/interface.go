package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// hashClient is the part of the go-redis client the settings source uses.
//
// This interface is implemented by *redis.Client.
type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Close() error
}
