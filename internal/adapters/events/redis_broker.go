package events

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "plans"

const publishTimeout = 2 * time.Second

// RedisBroker implements EventBroker over Redis Pub/Sub so every server
// instance sees plans stored by any other.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroker(url, channel string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis broker: parse url: %w", err)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{rdb: redis.NewClient(opt), channel: channel}, nil
}

var _ ports.EventBroker = (*RedisBroker)(nil)

func (b *RedisBroker) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis broker: ping: %w", err)
	}
	return nil
}

func (b *RedisBroker) Close() error { return b.rdb.Close() }

func (b *RedisBroker) Publish(ctx context.Context, evt domain.PlanEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis broker: encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis broker: publish to %q: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan domain.PlanEvent, func(), error) {
	ps := b.rdb.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no event published after we return is lost.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis broker: subscribe to %q: %w", b.channel, err)
	}

	out := make(chan domain.PlanEvent, subscriberBuffer)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt domain.PlanEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("redis broker: drop malformed event channel=%s err=%v", msg.Channel, err)
					continue
				}
				select {
				case out <- evt:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	return out, cancel, nil
}
