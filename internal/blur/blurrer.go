package blur

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/blurrer/internal/event"
	"github.com/dshills/blurrer/internal/renderer/overlay"
	"github.com/dshills/blurrer/internal/span"
)

// Document reports the length of the text being blurred.
type Document interface {
	Len() int
}

// SelectionSource provides the current selection, sorted by start and
// non-overlapping.
type SelectionSource interface {
	Spans() span.Selection
}

// Surface draws overlays.
type Surface interface {
	// Clear removes every overlay.
	Clear()
	// Add draws one overlay.
	Add(cmd DrawCommand) error
}

// RefreshError reports a draw command the surface rejected.
type RefreshError struct {
	Span span.Span
	Err  error
}

// Error implements the error interface.
func (e *RefreshError) Error() string {
	return fmt.Sprintf("blur refresh: add overlay %s: %v", e.Span, e.Err)
}

// Unwrap returns the underlying error.
func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Stats describes the most recent refresh.
type Stats struct {
	// Refreshes counts completed and failed refreshes.
	Refreshes uint64
	// Overlays is the number of overlays drawn by the last refresh.
	Overlays int
	// Skipped is the number of complement spans that did not resolve.
	Skipped int
}

// Option configures a Blurrer.
type Option func(*Blurrer)

// WithBrush sets the overlay brush. The default is BrushFor(core.ColorBlack).
func WithBrush(brush overlay.Brush) Option {
	return func(b *Blurrer) {
		b.brush = brush
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Blurrer) {
		if log != nil {
			b.log = log
		}
	}
}

// WithTrimEmpty drops zero-length complement spans before they are
// resolved. By default the trailing zero-length span is resolved and
// skipped as unresolvable.
func WithTrimEmpty(trim bool) Option {
	return func(b *Blurrer) {
		b.trimEmpty = trim
	}
}

// Blurrer keeps the overlay surface in sync with the selection.
//
// Refreshes are synchronous and are neither debounced nor coalesced. A
// Blurrer is meant to be driven from a single event loop.
type Blurrer struct {
	doc      Document
	sel      SelectionSource
	resolver Resolver
	surface  Surface

	log *zap.Logger

	mu        sync.Mutex
	brush     overlay.Brush
	trimEmpty bool
	stats     Stats
}

// New creates a Blurrer.
func New(doc Document, sel SelectionSource, resolver Resolver, surface Surface, opts ...Option) *Blurrer {
	b := &Blurrer{
		doc:      doc,
		sel:      sel,
		resolver: resolver,
		surface:  surface,
		log:      zap.NewNop(),
		brush:    BrushFor(defaultBackground),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Brush returns the current overlay brush.
func (b *Blurrer) Brush() overlay.Brush {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brush
}

// SetBrush replaces the overlay brush. It takes effect on the next refresh.
func (b *Blurrer) SetBrush(brush overlay.Brush) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brush = brush
}

// SetTrimEmpty changes whether zero-length complement spans are dropped
// before resolving. It takes effect on the next refresh.
func (b *Blurrer) SetTrimEmpty(trim bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trimEmpty = trim
}

// Stats returns statistics about the last refresh.
func (b *Blurrer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Refresh redraws every overlay.
//
// The surface is always cleared first. A surface error stops the refresh
// and is returned as a *RefreshError; overlays already added stay drawn.
// A panic in any collaborator is logged and re-raised.
func (b *Blurrer) Refresh() error {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("blur refresh panicked", zap.Any("panic", r), zap.Stack("stack"))
			panic(r)
		}
	}()

	b.surface.Clear()

	sel := b.sel.Spans()
	docLen := b.doc.Len()
	b.mu.Lock()
	brush, trim := b.brush, b.trimEmpty
	b.mu.Unlock()
	cmds, skipped := plan(sel, docLen, b.resolver, brush, trim)

	drawn := 0
	var err error
	for _, cmd := range cmds {
		if addErr := b.surface.Add(cmd); addErr != nil {
			b.log.Error("blur refresh failed",
				zap.Stringer("span", cmd.Span),
				zap.Int("doc_len", docLen),
				zap.Error(addErr))
			err = &RefreshError{Span: cmd.Span, Err: addErr}
			break
		}
		drawn++
	}

	b.mu.Lock()
	b.stats.Refreshes++
	b.stats.Overlays = drawn
	b.stats.Skipped = skipped
	b.mu.Unlock()

	b.log.Debug("blur refreshed",
		zap.Int("selected", len(sel)),
		zap.Int("overlays", drawn),
		zap.Int("skipped", skipped))
	return err
}

// BlurRange draws one overlay over s with the current brush, leaving
// existing overlays in place. An unresolvable span draws nothing. The next
// Refresh clears it.
func (b *Blurrer) BlurRange(s span.Span) error {
	region, ok := b.resolver.Resolve(s)
	if !ok {
		return nil
	}
	if err := b.surface.Add(DrawCommand{Span: s, Region: region, Brush: b.Brush()}); err != nil {
		b.log.Error("blur range failed", zap.Stringer("span", s), zap.Error(err))
		return &RefreshError{Span: s, Err: err}
	}
	return nil
}

// OnLayoutChanged refreshes after a layout change.
func (b *Blurrer) OnLayoutChanged(ctx context.Context, ev event.Event) error {
	return b.Refresh()
}

// OnSelectionChanged refreshes after a selection change.
func (b *Blurrer) OnSelectionChanged(ctx context.Context, ev event.Event) error {
	return b.Refresh()
}

// Attach subscribes the Blurrer to layout and selection notifications on
// bus. detach removes both subscriptions.
func (b *Blurrer) Attach(bus *event.Bus) (detach func(), err error) {
	layoutID, err := bus.SubscribeFunc(event.TopicLayoutChanged, b.OnLayoutChanged)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", event.TopicLayoutChanged, err)
	}
	selectionID, err := bus.SubscribeFunc(event.TopicSelectionChanged, b.OnSelectionChanged)
	if err != nil {
		_ = bus.Unsubscribe(layoutID)
		return nil, fmt.Errorf("subscribe %s: %w", event.TopicSelectionChanged, err)
	}

	return func() {
		_ = bus.Unsubscribe(layoutID)
		_ = bus.Unsubscribe(selectionID)
	}, nil
}
