package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Channel every jobs-context event is published on. Consumers (the
// notification service, the WhatsApp assistant) subscribe here and
// dispatch on contextName+type.
const Channel = "jobs.events"

// RedisPublisher fans domain events out over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends each event as a JSON envelope. Events are delivered in
// the order the aggregate recorded them.
func (p *RedisPublisher) Publish(ctx context.Context, evts ...domain.Event) error {
	for _, e := range evts {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("events: marshal %s: %w", e.Type, err)
		}
		if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
			return fmt.Errorf("events: publish %s: %w", e.Type, err)
		}
		logger.Log.Debug("domain event published", "type", e.Type, "aggregate_id", e.AggregateID)
	}
	return nil
}

// LogPublisher only logs events. Used when Redis is not configured and
// in local development.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (p *LogPublisher) Publish(_ context.Context, evts ...domain.Event) error {
	for _, e := range evts {
		logger.Log.Info("domain event", "type", e.Type, "aggregate_id", e.AggregateID, "context", e.ContextName)
	}
	return nil
}
