package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/voltvend/voltvend/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// New returns the shared limiter, or nil when redis or the limit is not
// configured. Callers treat a nil limiter as unlimited.
func New(p Params) *Limiter {
	if p.Config.RedisAddr == "" || p.Config.APIRateLimit <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return NewLimiter(client, p.Log, p.Config.APIRateLimit, p.Config.APIRateBurst)
}

var Module = fx.Module("ratelimit",
	fx.Provide(New),
)
