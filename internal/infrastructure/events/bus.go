package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/logger"
)

// Subscriber reacts to a published domain event
type Subscriber interface {
	Handle(ctx context.Context, event entities.DomainEvent) error
}

// SubscriberFunc adapts a plain function to Subscriber
type SubscriberFunc func(ctx context.Context, event entities.DomainEvent) error

func (f SubscriberFunc) Handle(ctx context.Context, event entities.DomainEvent) error {
	return f(ctx, event)
}

// Bus delivers events to its subscribers synchronously, in subscription order.
// Delivery runs on the caller's context so subscribers join the caller's transaction.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// Publish stops at the first subscriber error and returns it
func (b *Bus) Publish(ctx context.Context, event entities.DomainEvent) error {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	logger.Debug(ctx, "Publishing domain event",
		zap.String("event", string(event.Type)),
		zap.Int("subscribers", len(subs)),
	)
	for _, s := range subs {
		if err := s.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
