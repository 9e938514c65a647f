package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/coinflip-platform/pkg/contracts/events"
)

// redisPublisher é o subconjunto de *redis.Client usado aqui
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis faz broadcast apenas das partidas liquidadas (feed de resultados)
type Redis struct {
	r       redisPublisher
	channel string
}

func NewRedis(r redisPublisher, channel string) *Redis {
	return &Redis{r: r, channel: channel}
}

func (b *Redis) Publish(ctx context.Context, e events.MatchEvent) error {
	if e.Type != events.TypeMatchResolved {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := b.r.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}
