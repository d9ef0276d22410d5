package app

import (
	"github.com/dshills/blurrer/internal/document"
	"github.com/dshills/blurrer/internal/event"
	"github.com/dshills/blurrer/internal/renderer/backend"
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/selection"
	"github.com/dshills/blurrer/internal/renderer/statusline"
)

// wheelLines is how far one mouse wheel step scrolls.
const wheelLines = 3

func (a *Application) handleKey(ev backend.Event) error {
	a.status.ClearMessage()

	extend := ev.Mod.Has(backend.ModShift)
	head := a.sel.Primary().Head

	switch ev.Key {
	case backend.KeyCtrlQ, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyRune:
		if ev.Rune == 'q' {
			return ErrQuit
		}
	case backend.KeyEscape:
		a.sel.Clear()
	case backend.KeyCtrlA:
		a.sel.SelectAll()
	case backend.KeyCtrlB:
		a.toggleBlur()
	case backend.KeyCtrlD:
		a.selectNextOccurrence()
	case backend.KeyLeft:
		a.moveTo(head-1, extend)
	case backend.KeyRight:
		a.moveTo(head+1, extend)
	case backend.KeyUp:
		a.moveTo(a.lineOffset(head, -1), extend)
	case backend.KeyDown:
		a.moveTo(a.lineOffset(head, 1), extend)
	case backend.KeyPageUp:
		a.moveTo(a.lineOffset(head, -a.vp.Height()), extend)
	case backend.KeyPageDown:
		a.moveTo(a.lineOffset(head, a.vp.Height()), extend)
	case backend.KeyHome:
		a.moveTo(a.doc.LineStart(a.doc.OffsetToPoint(head).Line), extend)
	case backend.KeyEnd:
		a.moveTo(a.doc.LineEnd(a.doc.OffsetToPoint(head).Line), extend)
	}
	return nil
}

func (a *Application) handleMouse(ev backend.Event) {
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		a.scroll(-wheelLines)
	case backend.MouseWheelDown:
		a.scroll(wheelLines)
	case backend.MouseLeft:
		if ev.MouseY >= a.vp.Height() {
			return
		}
		off := a.resolver.OffsetAt(core.ScreenPos{Row: ev.MouseY, Col: ev.MouseX})
		a.moveTo(off, ev.Mod.Has(backend.ModShift))
	}
}

// moveTo moves the primary head to offset, extending the selection or
// collapsing it to a caret, and scrolls the head into view.
func (a *Application) moveTo(offset int, extend bool) {
	offset = a.doc.Clamp(offset)
	if extend {
		a.sel.Extend(offset)
	} else {
		a.sel.MoveCaret(offset)
	}
	a.revealHead()
}

// lineOffset returns the offset delta lines away from offset, keeping the
// column where the target line is long enough.
func (a *Application) lineOffset(offset, delta int) int {
	p := a.doc.OffsetToPoint(offset)
	line := max(0, min(p.Line+delta, a.doc.LineCount()-1))
	return a.doc.PointToOffset(document.Point{Line: line, Column: p.Column})
}

func (a *Application) revealHead() {
	p := a.doc.OffsetToPoint(a.sel.Primary().Head)
	col := 0
	if a.engine.WrapWidth() == 0 {
		col = a.resolver.LineLayout(p.Line).VisualColumn(p.Column)
	}
	if a.vp.EnsureVisible(p.Line, col) {
		a.publish(event.TopicLayoutChanged, event.LayoutChanged{Reason: "scroll"})
	}
}

func (a *Application) scroll(lines int) {
	if a.vp.ScrollBy(lines) {
		a.publish(event.TopicLayoutChanged, event.LayoutChanged{Reason: "scroll"})
	}
}

func (a *Application) toggleBlur() {
	on := !a.overlays.Enabled()
	a.setBlur(on)
	if on {
		a.status.SetMessage("blur on", statusline.MessageInfo)
	} else {
		a.status.SetMessage("blur off", statusline.MessageInfo)
	}
}

// selectNextOccurrence adds the next match of the primary selection's text
// as a secondary selection.
func (a *Application) selectNextOccurrence() {
	primary := a.sel.Primary()
	if primary.IsEmpty() {
		a.status.SetMessage("nothing selected", statusline.MessageInfo)
		return
	}

	from := primary.Span().End
	for _, r := range a.sel.Secondary() {
		from = max(from, r.Span().End)
	}

	match, ok := a.doc.Find(a.doc.Slice(primary.Span()), from)
	if !ok || a.sel.Contains(match.Start) {
		a.status.SetMessage("no more matches", statusline.MessageInfo)
		return
	}
	a.sel.AddSecondary(selection.Range{Anchor: match.Start, Head: match.End})
}
