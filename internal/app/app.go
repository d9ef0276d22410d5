// Package app wires the document, selection, layout, overlay and blur
// components to a terminal backend and runs the main event loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/blurrer/internal/blur"
	"github.com/dshills/blurrer/internal/config"
	"github.com/dshills/blurrer/internal/config/watcher"
	"github.com/dshills/blurrer/internal/document"
	"github.com/dshills/blurrer/internal/event"
	"github.com/dshills/blurrer/internal/event/topic"
	"github.com/dshills/blurrer/internal/logging"
	"github.com/dshills/blurrer/internal/renderer/backend"
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/layout"
	"github.com/dshills/blurrer/internal/renderer/overlay"
	"github.com/dshills/blurrer/internal/renderer/selection"
	"github.com/dshills/blurrer/internal/renderer/statusline"
	"github.com/dshills/blurrer/internal/renderer/viewport"
)

// layoutCacheSize bounds the number of cached line layouts.
const layoutCacheSize = 4096

// Application is the central coordinator. All methods except Run's
// watcher callback must be called from the goroutine running the event
// loop.
type Application struct {
	doc *document.Document
	sel *selection.Manager

	vp       *viewport.Viewport
	engine   *layout.Engine
	cache    *layout.Cache
	resolver *layout.Resolver

	overlays   *overlay.Manager
	compositor *overlay.Compositor
	blurrer    *blur.Blurrer
	detach     func()

	bus     *event.Bus
	backend backend.Backend
	status  *statusline.StatusLine

	cfg       config.Config
	textStyle core.Style
	selStyle  core.Style

	ctx context.Context
	log *zap.Logger

	configPath string
	watch      bool
	watcher    *watcher.Watcher

	running atomic.Bool
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Application) {
		if log != nil {
			a.log = log
		}
	}
}

// WithConfigPath sets the file Reload reads.
func WithConfigPath(path string) Option {
	return func(a *Application) {
		a.configPath = path
	}
}

// WithWatch enables reloading the config file when it changes on disk.
// It has no effect without a config path.
func WithWatch(watch bool) Option {
	return func(a *Application) {
		a.watch = watch
	}
}

// New creates an application showing doc on b. b is initialized by Run.
func New(b backend.Backend, doc *document.Document, cfg config.Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	a := &Application{
		doc:     doc,
		backend: b,
		bus:     event.NewBus(),
		status:  statusline.New(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ctx = logging.NewContext(context.Background(), a.log)

	width, height := b.Size()
	a.vp = viewport.NewViewport(width, height-1)
	a.vp.SetMaxLine(doc.LineCount())
	a.engine = layout.NewEngine(cfg.Editor.TabWidth)
	a.cache = layout.NewCache(a.engine, layoutCacheSize)
	a.resolver = layout.NewResolver(doc, a.cache, a.vp)

	a.overlays = overlay.NewManager()
	a.compositor = overlay.NewCompositor(a.overlays)
	a.sel = selection.NewManager(doc.Len())
	a.blurrer = blur.New(doc, a.sel, a.resolver, NewSurfaceAdapter(a.overlays),
		blur.WithLogger(a.log.Named("blur")),
		blur.WithTrimEmpty(cfg.Blur.TrimEmpty))

	detach, err := a.blurrer.Attach(a.bus)
	if err != nil {
		return nil, &InitError{Component: "blur", Err: err}
	}
	a.detach = detach
	if _, err := a.bus.SubscribeFunc(topic.WildcardMulti, logEvent); err != nil {
		detach()
		return nil, &InitError{Component: "event bus", Err: err}
	}

	a.sel.OnChange(func() {
		a.publish(event.TopicSelectionChanged, event.SelectionChanged{Count: len(a.sel.Spans())})
	})

	a.status.SetFilename(doc.Path())
	a.apply(cfg)
	return a, nil
}

func logEvent(ctx context.Context, ev event.Event) error {
	logging.L(ctx).Debug("event",
		zap.Stringer("topic", ev.Type),
		zap.String("id", ev.Metadata.ID),
		zap.String("source", ev.Metadata.Source))
	return nil
}

// apply installs cfg into every component. Callers publish the layout
// change.
func (a *Application) apply(cfg config.Config) {
	a.cfg = cfg

	a.engine.SetTabWidth(cfg.Editor.TabWidth)
	a.engine.SetWrap(a.wrapWidth())
	a.cache.Invalidate()
	a.vp.SetScrolloff(cfg.Editor.Scrolloff)

	fg, bg := cfg.Theme.ForegroundColor(), cfg.Theme.BackgroundColor()
	a.textStyle = core.NewStyle(fg).WithBackground(bg)
	a.selStyle = a.textStyle.WithBackground(cfg.Theme.SelectionColor())
	a.status.SetColors(fg, bg)

	a.blurrer.SetBrush(blur.BrushFor(bg))
	a.blurrer.SetTrimEmpty(cfg.Blur.TrimEmpty)
	a.setBlur(cfg.Blur.Enabled)
}

// wrapWidth returns the hard wrap column, or 0 when wrapping is off.
func (a *Application) wrapWidth() int {
	switch {
	case !a.cfg.Editor.Wrap:
		return 0
	case a.cfg.Editor.WrapWidth > 0:
		return a.cfg.Editor.WrapWidth
	default:
		return a.vp.Width()
	}
}

func (a *Application) setBlur(on bool) {
	a.overlays.SetEnabled(on)
	a.status.SetBlur(on)
}

// publish delivers an event on the bus. Handler failures are logged and
// shown on the status line.
func (a *Application) publish(t topic.Topic, payload any) {
	if err := a.bus.Publish(a.ctx, event.New(t, payload, "app")); err != nil {
		a.log.Warn("event handler failed", zap.Stringer("topic", t), zap.Error(err))
		a.status.SetMessage(err.Error(), statusline.MessageError)
	}
}

// Run initializes the backend and processes events until quit.
func (a *Application) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if err := a.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer a.backend.Shutdown()

	if err := a.startWatcher(); err != nil {
		a.log.Warn("config watch disabled", zap.String("path", a.configPath), zap.Error(err))
		a.status.SetMessage(fmt.Sprintf("config watch disabled: %v", err), statusline.MessageError)
	}
	defer a.stopWatcher()

	a.resize(a.backend.Size())
	a.Render()

	for {
		ev := a.backend.PollEvent()
		if err := a.HandleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
		a.Render()
	}
}

// Close detaches the blur orchestrator and stops the config watcher.
func (a *Application) Close() {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
	a.stopWatcher()
}

// HandleEvent processes one backend event. It returns ErrQuit when the
// user asked to exit.
func (a *Application) HandleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return a.handleKey(ev)
	case backend.EventMouse:
		a.handleMouse(ev)
	case backend.EventResize:
		a.resize(ev.Width, ev.Height)
	case backend.EventInterrupt:
		if _, ok := ev.Data.(reloadRequest); ok {
			a.Reload()
		}
	}
	return nil
}

// resize fits the viewport to a screen of width x height, leaving the last
// row for the status line.
func (a *Application) resize(width, height int) {
	a.vp.Resize(width, height-1)
	if a.cfg.Editor.Wrap && a.cfg.Editor.WrapWidth == 0 {
		a.engine.SetWrap(a.vp.Width())
		a.cache.Invalidate()
	}
	a.log.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	a.publish(event.TopicLayoutChanged, event.LayoutChanged{Reason: "resize"})
}

// Document returns the displayed document.
func (a *Application) Document() *document.Document {
	return a.doc
}

// Selection returns the selection manager.
func (a *Application) Selection() *selection.Manager {
	return a.sel
}

// Viewport returns the text area viewport.
func (a *Application) Viewport() *viewport.Viewport {
	return a.vp
}

// Overlays returns the overlay manager the blur draws into.
func (a *Application) Overlays() *overlay.Manager {
	return a.overlays
}

// Blurrer returns the blur orchestrator.
func (a *Application) Blurrer() *blur.Blurrer {
	return a.blurrer
}

// Bus returns the event bus.
func (a *Application) Bus() *event.Bus {
	return a.bus
}

// Config returns the active configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// StatusLine returns the status line.
func (a *Application) StatusLine() *statusline.StatusLine {
	return a.status
}
