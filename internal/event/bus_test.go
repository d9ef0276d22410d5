package event

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/blurrer/internal/event/topic"
)

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		_, err := bus.SubscribeFunc(TopicLayoutChanged, func(ctx context.Context, ev Event) error {
			order = append(order, name)
			return nil
		})
		if err != nil {
			t.Fatalf("SubscribeFunc() error = %v", err)
		}
	}

	if err := bus.Publish(context.Background(), New(TopicLayoutChanged, LayoutChanged{Reason: "resize"}, "test")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("handler order = %v, want [a b c]", order)
	}
}

func TestBus_PublishMatchesPattern(t *testing.T) {
	bus := NewBus()
	var got []topic.Topic

	bus.SubscribeFunc("*.changed", func(ctx context.Context, ev Event) error {
		got = append(got, ev.Type)
		return nil
	})

	ctx := context.Background()
	bus.Publish(ctx, New(TopicLayoutChanged, nil, "test"))
	bus.Publish(ctx, New(TopicSelectionChanged, nil, "test"))
	bus.Publish(ctx, New(TopicConfigReloaded, nil, "test"))

	if len(got) != 2 || got[0] != TopicLayoutChanged || got[1] != TopicSelectionChanged {
		t.Errorf("received %v, want [layout.changed selection.changed]", got)
	}
}

func TestBus_PublishPayload(t *testing.T) {
	bus := NewBus()
	var reason string

	bus.SubscribeFunc(TopicLayoutChanged, func(ctx context.Context, ev Event) error {
		if p, ok := ev.Payload.(LayoutChanged); ok {
			reason = p.Reason
		}
		return nil
	})
	bus.Publish(context.Background(), New(TopicLayoutChanged, LayoutChanged{Reason: "scroll"}, "test"))

	if reason != "scroll" {
		t.Errorf("reason = %q, want %q", reason, "scroll")
	}
}

func TestBus_PublishErrors(t *testing.T) {
	bus := NewBus()
	errFirst := errors.New("first")
	ran := 0

	bus.SubscribeFunc(TopicSelectionChanged, func(ctx context.Context, ev Event) error {
		ran++
		return errFirst
	})
	bus.SubscribeFunc(TopicSelectionChanged, func(ctx context.Context, ev Event) error {
		ran++
		return nil
	})

	err := bus.Publish(context.Background(), New(TopicSelectionChanged, nil, "test"))
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
	if !errors.Is(err, errFirst) {
		t.Errorf("Publish() error = %v, want wrapped %v", err, errFirst)
	}

	var he *HandlerError
	if !errors.As(err, &he) {
		t.Fatalf("Publish() error = %T, want *HandlerError", err)
	}
	if he.SubscriptionID != 1 || he.Topic != "selection.changed" {
		t.Errorf("HandlerError = %+v", he)
	}
}

func TestBus_PublishInvalidTopic(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	for _, tp := range []topic.Topic{"", "layout.*", "layout..changed"} {
		if err := bus.Publish(ctx, New(tp, nil, "test")); !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("Publish(%q) error = %v, want ErrInvalidTopic", tp, err)
		}
	}
}

func TestBus_PublishCanceled(t *testing.T) {
	bus := NewBus()
	called := false
	bus.SubscribeFunc(TopicLayoutChanged, func(ctx context.Context, ev Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := bus.Publish(ctx, New(TopicLayoutChanged, nil, "test")); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("handler should not run after cancellation")
	}
}

func TestBus_Subscribe_Invalid(t *testing.T) {
	bus := NewBus()

	if _, err := bus.Subscribe("", HandlerFunc(func(context.Context, Event) error { return nil })); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}
	if _, err := bus.Subscribe(TopicLayoutChanged, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) error = %v, want ErrNilHandler", err)
	}
	if _, err := bus.SubscribeFunc(TopicLayoutChanged, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("SubscribeFunc(nil) error = %v, want ErrNilHandler", err)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	id, _ := bus.SubscribeFunc(TopicLayoutChanged, func(ctx context.Context, ev Event) error {
		calls++
		return nil
	})

	if err := bus.Unsubscribe(id); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if bus.Count() != 0 {
		t.Errorf("Count() = %d, want 0", bus.Count())
	}
	bus.Publish(context.Background(), New(TopicLayoutChanged, nil, "test"))
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if err := bus.Unsubscribe(id); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe() error = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestBus_HandlerMayPublish(t *testing.T) {
	bus := NewBus()
	layouts := 0

	bus.SubscribeFunc(TopicConfigReloaded, func(ctx context.Context, ev Event) error {
		return bus.Publish(ctx, New(TopicLayoutChanged, nil, "test"))
	})
	bus.SubscribeFunc(TopicLayoutChanged, func(ctx context.Context, ev Event) error {
		layouts++
		return nil
	})

	if err := bus.Publish(context.Background(), New(TopicConfigReloaded, nil, "test")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if layouts != 1 {
		t.Errorf("layouts = %d, want 1", layouts)
	}
}

func TestNew(t *testing.T) {
	a := New(TopicLayoutChanged, nil, "app")
	b := New(TopicLayoutChanged, nil, "app")

	if a.Metadata.ID == "" || a.Metadata.ID == b.Metadata.ID {
		t.Errorf("IDs should be unique and non-empty: %q, %q", a.Metadata.ID, b.Metadata.ID)
	}
	if a.Metadata.Source != "app" {
		t.Errorf("Source = %q, want %q", a.Metadata.Source, "app")
	}
	if a.Metadata.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}
