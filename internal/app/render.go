package app

import (
	"github.com/dshills/blurrer/internal/renderer/core"
)

// Render draws the text area, the status line and the cursor, then
// flushes the backend.
func (a *Application) Render() {
	width, height := a.backend.Size()
	textHeight := a.vp.Height()
	blank := core.NewStyledCell(' ', a.textStyle)
	a.backend.Fill(core.NewScreenRect(0, 0, textHeight, width), blank)

	highlight := a.selectionRegion()
	left := a.resolver.LeftColumn()

	for _, row := range a.resolver.VisibleRows() {
		line := make([]core.Cell, width)
		for i := range line {
			line[i] = blank
		}

		cells := row.Layout.CellsForRow(row.WrapRow)
		if left > 0 {
			cells = cells[min(left, len(cells)):]
		}
		for i, c := range cells {
			if i >= width {
				break
			}
			if i == 0 && c.IsContinuation() {
				// The wide rune's first half is scrolled off.
				c = blank
			}
			c.Style = a.textStyle
			line[i] = c
		}

		for _, cols := range highlight.ColumnsOnRow(row.ScreenRow) {
			for col := max(cols[0], 0); col < cols[1] && col < width; col++ {
				line[col].Style = a.selStyle
			}
		}

		line = a.compositor.CompositeRow(row.ScreenRow, line)
		for x, c := range line {
			a.backend.SetCell(x, row.ScreenRow, c)
		}
	}

	a.updateStatus()
	if height > textHeight {
		a.status.Render(a.backend, height-1, width)
	}

	head := a.sel.Primary().Head
	if pos, ok := a.resolver.PositionOf(head); ok {
		a.backend.ShowCursor(pos.Col, pos.Row)
	} else {
		a.backend.HideCursor()
	}
	a.backend.Show()
}

// selectionRegion returns the screen geometry of every selected span.
func (a *Application) selectionRegion() core.Region {
	var region core.Region
	for _, s := range a.sel.Spans() {
		if r, ok := a.resolver.Resolve(s); ok {
			region = append(region, r...)
		}
	}
	return region
}

func (a *Application) updateStatus() {
	p := a.doc.OffsetToPoint(a.sel.Primary().Head)
	a.status.SetPosition(p.Line+1, p.Column+1, a.doc.LineCount())

	spans := a.sel.Spans()
	ranges := 0
	for _, s := range spans {
		if !s.IsEmpty() {
			ranges++
		}
	}
	a.status.SetSelection(ranges, spans.Len(), a.overlays.Count())
}
