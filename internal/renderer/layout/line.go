// Package layout provides line layout computation and the mapping from
// document spans to screen geometry.
package layout

import (
	"github.com/dshills/blurrer/internal/renderer/core"
)

// LineLayout represents the visual layout of a single document line.
type LineLayout struct {
	// Line is the document line number (0-indexed).
	Line int

	// Cells are the visual cells after tab expansion.
	Cells []core.Cell

	// VisualCols maps visual column -> rune column.
	VisualCols []int

	// BufferCols maps rune column -> first visual column. It has one
	// extra entry for the end of the line.
	BufferCols []int

	// WrapPoints are the visual columns where a new row starts.
	WrapPoints []int
	RowCount   int

	// Width is the total visual width in columns.
	Width   int
	HasTabs bool
	HasWide bool
}

// VisualColumn converts a rune column to a visual column.
// Columns beyond the line extrapolate from the end.
func (l *LineLayout) VisualColumn(col int) int {
	if col < 0 {
		return 0
	}
	if col >= len(l.BufferCols) {
		return l.Width + col - (len(l.BufferCols) - 1)
	}
	return l.BufferCols[col]
}

// BufferColumn converts a visual column to a rune column.
// Columns beyond the line extrapolate from the end.
func (l *LineLayout) BufferColumn(visCol int) int {
	if visCol < 0 {
		return 0
	}
	if visCol >= len(l.VisualCols) {
		return len(l.BufferCols) - 1 + visCol - l.Width
	}
	return l.VisualCols[visCol]
}

// VisualRow returns which wrapped row a visual column falls on.
func (l *LineLayout) VisualRow(visCol int) int {
	row := 0
	for _, wp := range l.WrapPoints {
		if visCol < wp {
			break
		}
		row++
	}
	return row
}

// RowStartColumn returns the visual column where a wrapped row starts.
func (l *LineLayout) RowStartColumn(row int) int {
	if row <= 0 || len(l.WrapPoints) == 0 {
		return 0
	}
	if row > len(l.WrapPoints) {
		row = len(l.WrapPoints)
	}
	return l.WrapPoints[row-1]
}

// RowEndColumn returns the visual column where a wrapped row ends (exclusive).
func (l *LineLayout) RowEndColumn(row int) int {
	if row < 0 {
		return 0
	}
	if row >= len(l.WrapPoints) {
		return l.Width
	}
	return l.WrapPoints[row]
}

// CellsForRow returns the cells for a specific wrapped row.
func (l *LineLayout) CellsForRow(row int) []core.Cell {
	start := l.RowStartColumn(row)
	end := min(l.RowEndColumn(row), len(l.Cells))
	if start >= end {
		return nil
	}
	return l.Cells[start:end]
}

// Engine computes line layouts.
type Engine struct {
	tabWidth  int
	wrapWidth int // 0 = no wrap
}

// NewEngine creates a layout engine with the given tab width.
func NewEngine(tabWidth int) *Engine {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &Engine{tabWidth: tabWidth}
}

// TabWidth returns the current tab width.
func (e *Engine) TabWidth() int {
	return e.tabWidth
}

// SetTabWidth sets the tab width.
func (e *Engine) SetTabWidth(width int) {
	e.tabWidth = max(1, width)
}

// WrapWidth returns the current wrap width (0 = no wrap).
func (e *Engine) WrapWidth() int {
	return e.wrapWidth
}

// SetWrap sets the hard wrap width. A width of 0 disables wrapping.
func (e *Engine) SetWrap(width int) {
	e.wrapWidth = max(0, width)
}

// Layout computes the visual layout for a line.
func (e *Engine) Layout(text string, line int) *LineLayout {
	l := &LineLayout{
		Line:       line,
		Cells:      make([]core.Cell, 0, len(text)),
		VisualCols: make([]int, 0, len(text)),
		BufferCols: make([]int, 0, len(text)+1),
		RowCount:   1,
	}

	style := core.DefaultStyle()
	rowStart := 0
	col := 0

	// place breaks the row if a cell of width w would not fit.
	place := func(w int) {
		if e.wrapWidth > 0 && len(l.Cells) > rowStart && len(l.Cells)-rowStart+w > e.wrapWidth {
			rowStart = len(l.Cells)
			l.WrapPoints = append(l.WrapPoints, rowStart)
			l.RowCount++
		}
	}

	for _, r := range text {
		if r == '\t' {
			l.HasTabs = true
			l.BufferCols = append(l.BufferCols, len(l.Cells))
			stop := e.tabWidth - (len(l.Cells)-rowStart)%e.tabWidth
			for i := 0; i < stop; i++ {
				place(1)
				l.Cells = append(l.Cells, core.NewStyledCell(' ', style))
				l.VisualCols = append(l.VisualCols, col)
			}
			col++
			continue
		}

		width := core.RuneWidth(r)
		if width == 0 {
			// Control characters take no cells but keep their column.
			l.BufferCols = append(l.BufferCols, len(l.Cells))
			col++
			continue
		}

		place(width)
		l.BufferCols = append(l.BufferCols, len(l.Cells))
		l.Cells = append(l.Cells, core.Cell{Rune: r, Width: width, Style: style})
		l.VisualCols = append(l.VisualCols, col)
		if width == 2 {
			l.HasWide = true
			l.Cells = append(l.Cells, core.ContinuationCell())
			l.VisualCols = append(l.VisualCols, col)
		}
		col++
	}

	l.Width = len(l.Cells)
	l.BufferCols = append(l.BufferCols, l.Width)
	return l
}
