package redis

import (
	"context"
	"encoding/json"
	"time"

	"fieldflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisEventBus fans post-commit task mutations out over Pub/Sub so other
// connected viewers and the activity feed see structural changes without
// polling.
type RedisEventBus struct {
	client  *redis.Client
	channel string
}

func NewRedisEventBus(client *redis.Client, channel string) *RedisEventBus {
	if channel == "" {
		channel = "fieldflow:events:tasks"
	}
	return &RedisEventBus{
		client:  client,
		channel: channel,
	}
}

// PublishTaskMutated broadcasts the event to the network
func (b *RedisEventBus) PublishTaskMutated(ctx context.Context, event domain.TaskMutatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// SubscribeToTaskEvents opens a continuous stream for consumers
func (b *RedisEventBus) SubscribeToTaskEvents(ctx context.Context) (<-chan domain.TaskMutatedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	msgChan := make(chan domain.TaskMutatedEvent)

	// Background goroutine listens to Redis and forwards to our Go channel
	go func() {
		defer close(msgChan)
		defer pubsub.Close()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Transient broker failure; pause before retrying so a dead
				// connection does not spin the loop.
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			var event domain.TaskMutatedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case msgChan <- event:
			}
		}
	}()

	return msgChan, nil
}
