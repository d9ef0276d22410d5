package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/blurrer/internal/blur"
	"github.com/dshills/blurrer/internal/config"
	"github.com/dshills/blurrer/internal/document"
	"github.com/dshills/blurrer/internal/event"
	"github.com/dshills/blurrer/internal/renderer/backend"
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/overlay"
	"github.com/dshills/blurrer/internal/renderer/statusline"
	"github.com/dshills/blurrer/internal/span"
)

const sample = "hello world\nsecond line\nthird"

func newTestApp(t *testing.T, text string, cfg config.Config, opts ...Option) (*Application, *backend.NullBackend) {
	t.Helper()
	b := backend.NewNullBackend(80, 6)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	a, err := New(b, document.New(text), cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)
	a.resize(b.Size())
	return a, b
}

func key(k backend.Key, mod backend.ModMask) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k, Mod: mod}
}

func press(t *testing.T, a *Application, events ...backend.Event) {
	t.Helper()
	for _, ev := range events {
		if err := a.HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent(%+v) error = %v", ev, err)
		}
	}
}

func selectFirstWord(t *testing.T, a *Application) {
	t.Helper()
	for i := 0; i < 5; i++ {
		press(t, a, key(backend.KeyRight, backend.ModShift))
	}
}

func TestNew(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	if got := a.Viewport().Height(); got != 5 {
		t.Errorf("Viewport().Height() = %d, want 5", got)
	}
	if got := a.Overlays().Count(); got != 0 {
		t.Errorf("Overlays().Count() = %d, want 0 with no selection", got)
	}
	if !a.Overlays().Enabled() {
		t.Error("blur should be enabled by default")
	}
	if got, want := a.Blurrer().Brush(), blur.BrushFor(config.Default().Theme.BackgroundColor()); got != want {
		t.Errorf("Brush() = %v, want %v", got, want)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.TabWidth = 0

	_, err := New(backend.NewNullBackend(80, 6), document.New(sample), cfg)
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Component != "config" {
		t.Errorf("New() error = %v, want config InitError", err)
	}
}

func TestSelectionDrivesOverlays(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	selectFirstWord(t, a)

	want := span.Selection{{Start: 0, End: 5}}
	if got := a.Selection().Spans(); len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Spans() = %v, want %v", got, want)
	}

	overlays := a.Overlays().Overlays()
	if len(overlays) != 1 {
		t.Fatalf("overlay count = %d, want 1", len(overlays))
	}
	if got, want := overlays[0].Span, (span.Span{Start: 5, End: 29}); got != want {
		t.Errorf("overlay span = %v, want %v", got, want)
	}
	// Rest of line 0 plus the line break cell, line 1 with its break,
	// then line 2.
	wantRegion := core.Region{
		core.NewScreenRect(0, 5, 1, 12),
		core.NewScreenRect(1, 0, 2, 12),
		core.NewScreenRect(2, 0, 3, 5),
	}
	if got := overlays[0].Region; len(got) != len(wantRegion) {
		t.Errorf("overlay region = %v, want %v", got, wantRegion)
	} else {
		for i := range got {
			if got[i] != wantRegion[i] {
				t.Errorf("region[%d] = %v, want %v", i, got[i], wantRegion[i])
			}
		}
	}
	if stats := a.Blurrer().Stats(); stats.Skipped != 0 {
		t.Errorf("Stats().Skipped = %d, want 0", stats.Skipped)
	}

	press(t, a, key(backend.KeyEscape, backend.ModNone))
	if got := a.Overlays().Count(); got != 0 {
		t.Errorf("after Escape overlay count = %d, want 0", got)
	}
}

func TestSelectionToEndOfDocument(t *testing.T) {
	tests := []struct {
		name        string
		trimEmpty   bool
		wantSkipped int
	}{
		{"trailing span resolved and skipped", false, 1},
		{"trailing span trimmed", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Blur.TrimEmpty = tt.trimEmpty
			a, _ := newTestApp(t, sample, cfg)

			press(t, a,
				key(backend.KeyDown, backend.ModNone),
				key(backend.KeyDown, backend.ModNone),
				key(backend.KeyEnd, backend.ModShift),
			)

			want := span.Span{Start: 24, End: 29}
			if got := a.Selection().Spans(); len(got) != 1 || got[0] != want {
				t.Fatalf("Spans() = %v, want [%v]", got, want)
			}
			overlays := a.Overlays().Overlays()
			if len(overlays) != 1 || overlays[0].Span != (span.Span{Start: 0, End: 24}) {
				t.Errorf("overlays = %v, want one over [0,24)", overlays)
			}
			if got := a.Blurrer().Stats().Skipped; got != tt.wantSkipped {
				t.Errorf("Stats().Skipped = %d, want %d", got, tt.wantSkipped)
			}
		})
	}
}

func TestSelectAllDrawsNothing(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	press(t, a, key(backend.KeyCtrlA, backend.ModNone))

	if got := a.Overlays().Count(); got != 0 {
		t.Errorf("overlay count = %d, want 0", got)
	}
	if got := a.Selection().Spans().Len(); got != 29 {
		t.Errorf("selected = %d, want 29", got)
	}
}

func TestRender(t *testing.T) {
	cfg := config.Default()
	a, b := newTestApp(t, sample, cfg)
	selectFirstWord(t, a)
	a.Render()

	if got := b.Row(0); !strings.HasPrefix(got, "hello world") {
		t.Errorf("Row(0) = %q, want prefix %q", got, "hello world")
	}

	selected := b.GetCell(0, 0)
	if !selected.Style.Background.Equals(cfg.Theme.SelectionColor()) {
		t.Errorf("selected cell background = %v, want %v", selected.Style.Background, cfg.Theme.SelectionColor())
	}
	if !selected.Style.Foreground.Equals(cfg.Theme.ForegroundColor()) {
		t.Errorf("selected cell foreground = %v, want %v", selected.Style.Foreground, cfg.Theme.ForegroundColor())
	}

	blurred := b.GetCell(6, 0)
	if blurred.Rune != 'w' {
		t.Errorf("GetCell(6, 0).Rune = %q, want 'w'", blurred.Rune)
	}
	if blurred.Style.Foreground.Equals(cfg.Theme.ForegroundColor()) {
		t.Error("unselected text should be blurred")
	}

	// Rows past the last line are not covered.
	if got := b.GetCell(0, 3); !got.Style.Background.Equals(cfg.Theme.BackgroundColor()) {
		t.Errorf("empty row background = %v, want %v", got.Style.Background, cfg.Theme.BackgroundColor())
	}

	status := b.Row(5)
	for _, want := range []string{"BLUR", "1 sel, 5 chars, 1 overlays", "Ln 1, Col 6"} {
		if !strings.Contains(status, want) {
			t.Errorf("status row %q missing %q", status, want)
		}
	}

	if x, y, visible := b.CursorPosition(); !visible || x != 5 || y != 0 {
		t.Errorf("cursor = (%d, %d, %v), want (5, 0, true)", x, y, visible)
	}
	if b.Shows() == 0 {
		t.Error("Render should call Show")
	}
}

func TestRenderScrolledWideRune(t *testing.T) {
	a, b := newTestApp(t, "世界abc", config.Default())

	a.Viewport().ScrollHorizontal(1)
	a.Render()

	if got := b.GetCell(0, 0).Rune; got != ' ' {
		t.Errorf("GetCell(0, 0).Rune = %q, want ' '", got)
	}
	if got := b.GetCell(1, 0).Rune; got != '界' {
		t.Errorf("GetCell(1, 0).Rune = %q, want '界'", got)
	}
}

func TestToggleBlur(t *testing.T) {
	cfg := config.Default()
	a, b := newTestApp(t, sample, cfg)
	selectFirstWord(t, a)

	press(t, a, key(backend.KeyCtrlB, backend.ModNone))
	a.Render()

	if a.Overlays().Enabled() {
		t.Error("blur should be disabled")
	}
	if got := b.GetCell(6, 0); !got.Style.Foreground.Equals(cfg.Theme.ForegroundColor()) {
		t.Errorf("foreground with blur off = %v, want %v", got.Style.Foreground, cfg.Theme.ForegroundColor())
	}
	if msg, _ := a.StatusLine().Message(); msg != "blur off" {
		t.Errorf("Message() = %q, want %q", msg, "blur off")
	}

	press(t, a, key(backend.KeyCtrlB, backend.ModNone))
	if !a.Overlays().Enabled() {
		t.Error("blur should be enabled again")
	}
}

func TestSelectNextOccurrence(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	press(t, a,
		key(backend.KeyRight, backend.ModNone),
		key(backend.KeyRight, backend.ModNone),
		key(backend.KeyRight, backend.ModShift),
		key(backend.KeyCtrlD, backend.ModNone),
	)
	want := span.Selection{{Start: 2, End: 4}}
	if got := a.Selection().Spans(); len(got) != 1 || got[0] != want[0] {
		t.Errorf("after one Ctrl+D Spans() = %v, want %v", got, want)
	}

	press(t, a, key(backend.KeyCtrlD, backend.ModNone))
	want = span.Selection{{Start: 2, End: 4}, {Start: 9, End: 10}}
	got := a.Selection().Spans()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("after two Ctrl+D Spans() = %v, want %v", got, want)
	}
	if n := a.Overlays().Count(); n != 3 {
		t.Errorf("overlay count = %d, want 3", n)
	}
}

func TestSelectNextOccurrence_NothingSelected(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	press(t, a, key(backend.KeyCtrlD, backend.ModNone))

	if msg, typ := a.StatusLine().Message(); msg != "nothing selected" || typ != statusline.MessageInfo {
		t.Errorf("Message() = %q, %v; want %q, info", msg, typ, "nothing selected")
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   backend.Event
	}{
		{"q", backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'}},
		{"ctrl+q", key(backend.KeyCtrlQ, backend.ModNone)},
		{"ctrl+c", key(backend.KeyCtrlC, backend.ModNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, sample, config.Default())
			if err := a.HandleEvent(tt.ev); !errors.Is(err, ErrQuit) {
				t.Errorf("HandleEvent() error = %v, want ErrQuit", err)
			}
		})
	}
}

func TestCaretMotion(t *testing.T) {
	tests := []struct {
		name   string
		events []backend.Event
		want   int
	}{
		{"right", []backend.Event{key(backend.KeyRight, backend.ModNone)}, 1},
		{"left at start", []backend.Event{key(backend.KeyLeft, backend.ModNone)}, 0},
		{"down keeps column", []backend.Event{
			key(backend.KeyRight, backend.ModNone),
			key(backend.KeyRight, backend.ModNone),
			key(backend.KeyDown, backend.ModNone),
		}, 14},
		{"down clamps to short line", []backend.Event{
			key(backend.KeyEnd, backend.ModNone),
			key(backend.KeyDown, backend.ModNone),
			key(backend.KeyDown, backend.ModNone),
		}, 29},
		{"end", []backend.Event{key(backend.KeyEnd, backend.ModNone)}, 11},
		{"home", []backend.Event{
			key(backend.KeyDown, backend.ModNone),
			key(backend.KeyEnd, backend.ModNone),
			key(backend.KeyHome, backend.ModNone),
		}, 12},
		{"page down", []backend.Event{key(backend.KeyPageDown, backend.ModNone)}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, sample, config.Default())
			press(t, a, tt.events...)
			if got := a.Selection().Primary().Head; got != tt.want {
				t.Errorf("Head = %d, want %d", got, tt.want)
			}
			if a.Selection().IsActive() {
				t.Error("plain motion should not select")
			}
		})
	}
}

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strings.Repeat("x", i%7+1)
	}
	return strings.Join(lines, "\n")
}

func TestScrollRefreshesOverlays(t *testing.T) {
	a, _ := newTestApp(t, numberedLines(30), config.Default())
	selectFirstWord(t, a)
	before := a.Blurrer().Stats().Refreshes

	press(t, a, backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseWheelDown})

	if got := a.Viewport().TopLine(); got != wheelLines {
		t.Errorf("TopLine() = %d, want %d", got, wheelLines)
	}
	if got := a.Blurrer().Stats().Refreshes; got != before+1 {
		t.Errorf("Refreshes = %d, want %d", got, before+1)
	}
	for _, o := range a.Overlays().Overlays() {
		if b := o.Region.Bounds(); b.Top < 0 || b.Bottom > a.Viewport().Height() {
			t.Errorf("overlay region %v outside the viewport", o.Region)
		}
	}
}

func TestCaretMotionScrolls(t *testing.T) {
	a, _ := newTestApp(t, numberedLines(30), config.Default())

	for i := 0; i < 10; i++ {
		press(t, a, key(backend.KeyDown, backend.ModNone))
	}

	top := a.Viewport().TopLine()
	if top == 0 {
		t.Fatal("viewport should have scrolled")
	}
	if line := 10; line < top || line >= top+a.Viewport().Height() {
		t.Errorf("line %d not visible with TopLine %d", line, top)
	}
}

func TestMouseClickMovesCaret(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	press(t, a, backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseLeft, MouseX: 3, MouseY: 1})

	if got := a.Selection().Primary().Head; got != 15 {
		t.Errorf("Head = %d, want 15", got)
	}

	press(t, a, backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseLeft, MouseX: 2, MouseY: 0, Mod: backend.ModShift})
	want := span.Span{Start: 2, End: 15}
	if got := a.Selection().Spans(); len(got) != 1 || got[0] != want {
		t.Errorf("Spans() = %v, want [%v]", got, want)
	}
}

func TestResizeRewraps(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.Wrap = true
	a, b := newTestApp(t, sample, cfg)

	if got := a.engine.WrapWidth(); got != 80 {
		t.Errorf("WrapWidth() = %d, want 80", got)
	}

	b.Resize(6, 10)
	press(t, a, b.PollEvent())

	if got := a.engine.WrapWidth(); got != 6 {
		t.Errorf("WrapWidth() after resize = %d, want 6", got)
	}
	if got := a.Viewport().Height(); got != 9 {
		t.Errorf("Height() after resize = %d, want 9", got)
	}
}

func TestEventsPublished(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())

	var topics []string
	if _, err := a.Bus().SubscribeFunc("**", func(ctx context.Context, ev event.Event) error {
		topics = append(topics, ev.Type.String())
		return nil
	}); err != nil {
		t.Fatalf("SubscribeFunc() error = %v", err)
	}

	press(t, a, key(backend.KeyRight, backend.ModShift))
	press(t, a, backend.Event{Type: backend.EventResize, Width: 80, Height: 6})

	want := []string{"selection.changed", "layout.changed"}
	if len(topics) != len(want) || topics[0] != want[0] || topics[1] != want[1] {
		t.Errorf("topics = %v, want %v", topics, want)
	}
}

func TestHandlerErrorShownOnStatusLine(t *testing.T) {
	a, _ := newTestApp(t, sample, config.Default())
	boom := errors.New("boom")
	if _, err := a.Bus().SubscribeFunc(event.TopicSelectionChanged, func(ctx context.Context, ev event.Event) error {
		return boom
	}); err != nil {
		t.Fatalf("SubscribeFunc() error = %v", err)
	}

	a.Selection().SelectAll()

	msg, typ := a.StatusLine().Message()
	if typ != statusline.MessageError || !strings.Contains(msg, "boom") {
		t.Errorf("Message() = %q, %v; want error containing %q", msg, typ, "boom")
	}
}

func TestSurfaceAdapter(t *testing.T) {
	m := overlay.NewManager()
	s := NewSurfaceAdapter(m)

	err := s.Add(blur.DrawCommand{Span: span.Span{Start: 0, End: 3}})
	if !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Add(empty region) error = %v, want ErrEmptyRegion", err)
	}

	cmd := blur.DrawCommand{
		Span:   span.Span{Start: 0, End: 3},
		Region: core.Region{core.NewScreenRect(0, 0, 1, 3)},
		Brush:  blur.BrushFor(core.ColorBlack),
	}
	if err := s.Add(cmd); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	s.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blurrer.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "[theme]\nbackground = \"#000000\"\n\n[editor]\ntab_width = 8\n")
	a, _ := newTestApp(t, "\tx", config.Default(), WithConfigPath(path))

	var reloaded []string
	a.Bus().SubscribeFunc(event.TopicConfigReloaded, func(ctx context.Context, ev event.Event) error {
		reloaded = append(reloaded, ev.Payload.(event.ConfigReloaded).Path)
		return nil
	})

	if err := a.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := a.Config().Editor.TabWidth; got != 8 {
		t.Errorf("TabWidth = %d, want 8", got)
	}
	if got := a.resolver.LineLayout(0).Width; got != 9 {
		t.Errorf("line width = %d, want 9 after tab width change", got)
	}
	if got := a.Blurrer().Brush().Fill; !got.Equals(core.ColorFromRGB(0, 0, 0)) {
		t.Errorf("Brush().Fill = %v, want #000000", got)
	}
	if len(reloaded) != 1 || reloaded[0] != path {
		t.Errorf("config.reloaded payloads = %v, want [%s]", reloaded, path)
	}
}

func TestReload_InvalidKeepsConfig(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_width = 99\n")
	a, _ := newTestApp(t, sample, config.Default(), WithConfigPath(path))

	if err := a.Reload(); err == nil {
		t.Fatal("Reload() should fail for an invalid tab width")
	}
	if got := a.Config().Editor.TabWidth; got != 4 {
		t.Errorf("TabWidth = %d, want 4", got)
	}
	if _, typ := a.StatusLine().Message(); typ != statusline.MessageError {
		t.Errorf("message type = %v, want error", typ)
	}
}

func TestReloadFromInterrupt(t *testing.T) {
	path := writeConfig(t, "[blur]\nenabled = false\n")
	a, b := newTestApp(t, sample, config.Default(), WithConfigPath(path))

	a.requestReload(path)
	ev := b.PollEvent()
	if ev.Type != backend.EventInterrupt {
		t.Fatalf("posted event type = %v, want EventInterrupt", ev.Type)
	}
	press(t, a, ev)

	if a.Overlays().Enabled() {
		t.Error("blur should be disabled after reload")
	}
}

func TestReloadFromInterrupt_Invalid(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_width = 99\n")
	a, _ := newTestApp(t, sample, config.Default(), WithConfigPath(path))

	ev := backend.Event{Type: backend.EventInterrupt, Data: reloadRequest{path: path}}
	if err := a.HandleEvent(ev); err != nil {
		t.Fatalf("HandleEvent() error = %v, want nil", err)
	}
	if msg, typ := a.StatusLine().Message(); typ != statusline.MessageError || !strings.HasPrefix(msg, "config: ") {
		t.Errorf("Message() = %q, %v; want config error", msg, typ)
	}
}

func TestStartWatcher(t *testing.T) {
	path := writeConfig(t, "")

	a, _ := newTestApp(t, sample, config.Default(), WithConfigPath(path))
	if err := a.startWatcher(); err != nil || a.watcher != nil {
		t.Errorf("startWatcher() without watch = %v, %v; want no watcher", err, a.watcher)
	}

	a, _ = newTestApp(t, sample, config.Default(), WithConfigPath(path), WithWatch(true))
	if err := a.startWatcher(); err != nil {
		t.Fatalf("startWatcher() error = %v", err)
	}
	if a.watcher == nil {
		t.Fatal("watcher not started")
	}
	a.stopWatcher()
	if a.watcher != nil {
		t.Error("stopWatcher() should clear the watcher")
	}
}

func TestRun(t *testing.T) {
	b := backend.NewNullBackend(80, 6)
	a, err := New(b, document.New(sample), config.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	b.PostEvent(key(backend.KeyRight, backend.ModShift))
	b.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	if err := a.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := a.Overlays().Count(); got != 1 {
		t.Errorf("overlay count = %d, want 1", got)
	}
	// Initial frame plus one per handled event before quit.
	if got := b.Shows(); got != 2 {
		t.Errorf("Shows() = %d, want 2", got)
	}
}
