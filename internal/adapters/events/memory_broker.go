package events

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
	"context"
	"sync"
)

const subscriberBuffer = 8

// MemoryBroker fans plan events out to in-process subscribers.
// A subscriber whose buffer is full misses the event instead of blocking the publisher.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[chan domain.PlanEvent]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: map[chan domain.PlanEvent]struct{}{}}
}

var _ ports.EventBroker = (*MemoryBroker)(nil)

func (b *MemoryBroker) Publish(ctx context.Context, evt domain.PlanEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan domain.PlanEvent, func(), error) {
	ch := make(chan domain.PlanEvent, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// Subscribers returns the number of live subscriptions.
func (b *MemoryBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
