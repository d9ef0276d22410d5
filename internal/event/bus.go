package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/blurrer/internal/event/topic"
)

type subscription struct {
	id      uint64
	pattern topic.Topic
	handler Handler
}

// Bus delivers events to subscribers synchronously.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every topic matching pattern and returns
// the subscription ID.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler) (uint64, error) {
	if !pattern.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return 0, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, pattern: pattern, handler: handler})
	return b.nextID, nil
}

// SubscribeFunc registers fn for every topic matching pattern.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn func(ctx context.Context, ev Event) error) (uint64, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Subscribe(pattern, HandlerFunc(fn))
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Count returns the number of subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every matching handler in subscription order.
//
// All handlers run even if an earlier one fails; the returned error joins
// every handler error, each wrapped in a *HandlerError. Handlers may
// subscribe, unsubscribe or publish; changes take effect on the next
// Publish.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if !ev.Type.IsValid() || ev.Type.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, ev.Type)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Type.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if err := s.handler.Handle(ctx, ev); err != nil {
			errs = append(errs, &HandlerError{SubscriptionID: s.id, Topic: ev.Type.String(), Err: err})
		}
	}
	return errors.Join(errs...)
}
