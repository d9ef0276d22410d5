package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blurrer/internal/event/topic"
)

// Event is a notification delivered to subscribers.
type Event struct {
	// Type is the topic the event was published on.
	Type topic.Topic

	// Payload carries topic-specific data.
	Payload any

	// Metadata describes the event instance.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID uniquely identifies the event.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the component that published the event.
	Source string
}

// New creates an event with fresh metadata.
func New(t topic.Topic, payload any, source string) Event {
	return Event{
		Type:    t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Topics published by the editor.
const (
	// TopicLayoutChanged is published when text positions on screen may
	// have moved: resize, scroll, wrap or tab changes.
	TopicLayoutChanged topic.Topic = "layout.changed"

	// TopicSelectionChanged is published when any selection changes.
	TopicSelectionChanged topic.Topic = "selection.changed"

	// TopicConfigReloaded is published after the config file is reloaded.
	TopicConfigReloaded topic.Topic = "config.reloaded"
)

// LayoutChanged is the payload of TopicLayoutChanged.
type LayoutChanged struct {
	// Reason is a short description such as "resize" or "scroll".
	Reason string
}

// SelectionChanged is the payload of TopicSelectionChanged.
type SelectionChanged struct {
	// Count is the number of selection ranges, carets included.
	Count int
}

// ConfigReloaded is the payload of TopicConfigReloaded.
type ConfigReloaded struct {
	// Path is the file that was reloaded.
	Path string
}
