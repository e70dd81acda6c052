package redis_fx

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"fiesta/internal/infra"
)

var Module = fx.Provide(
	provideRedis, provideRunLock,
)

func provideRedis() *redis.Client {
	return infra.InitRedis()
}

func provideRunLock(client *redis.Client) infra.RunLock {
	return infra.NewRedisRunLock(client)
}
