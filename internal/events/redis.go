package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix prefixes the per-group Redis channel names.
const DefaultChannelPrefix = "settleup:group:"

// RedisBus publishes events on one Redis pub/sub channel per group, so several
// server instances can share invalidations.
type RedisBus struct {
	client *redis.Client
	prefix string
}

// NewRedisBus wraps an existing client.
func NewRedisBus(client *redis.Client, prefix string) *RedisBus {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisBus{client: client, prefix: prefix}
}

// DialRedis connects to the Redis server at url (redis://host:port/db) and
// checks the connection.
func DialRedis(ctx context.Context, url string) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisBus(client, ""), nil
}

func (b *RedisBus) channel(groupID string) string {
	return b.prefix + groupID
}

// Publish sends event on the group's channel.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(event.GroupID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens on every group channel. Malformed payloads are logged
// and skipped.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				event, err := b.decode(msg)
				if err != nil {
					slog.Warn("Dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBus) decode(msg *redis.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		return Event{}, err
	}
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	if want := strings.TrimPrefix(msg.Channel, b.prefix); want != event.GroupID {
		return Event{}, fmt.Errorf("event for group %s on channel of group %s", event.GroupID, want)
	}
	return event, nil
}

// Close closes the underlying client; open subscriptions end.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
