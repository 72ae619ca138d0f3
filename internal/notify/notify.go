package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/voltvend/voltvend/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Channel carries token request transition events.
const Channel = "voltvend.request_transitions"

// Event describes a single token request status change.
type Event struct {
	RequestID snowflake.ID `json:"request_id"`
	VendorID  snowflake.ID `json:"vendor_id"`
	Status    string       `json:"status"`
	At        time.Time    `json:"at"`
}

// Publisher pushes transition events to interested collaborators.
// Delivery is best effort; the request lifecycle never blocks on it.
type Publisher interface {
	PublishTransition(ctx context.Context, event Event)
}

type redisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

type noopPublisher struct{}

func (noopPublisher) PublishTransition(ctx context.Context, event Event) {}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// New returns a redis-backed publisher, or a noop when redis is not configured.
func New(p Params) Publisher {
	if p.Config.RedisAddr == "" {
		return noopPublisher{}
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

	return &redisPublisher{
		client: client,
		log:    p.Log.Named("notify.publisher"),
	}
}

func (p *redisPublisher) PublishTransition(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("marshal transition event", zap.Error(err))
		return
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		p.log.Warn("publish transition event",
			zap.String("request_id", event.RequestID.String()),
			zap.String("status", event.Status),
			zap.Error(err),
		)
	}
}
