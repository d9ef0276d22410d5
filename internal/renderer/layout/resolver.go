package layout

import (
	"github.com/dshills/blurrer/internal/document"
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/viewport"
	"github.com/dshills/blurrer/internal/span"
)

// Row is one visible screen row of the text area.
type Row struct {
	// ScreenRow is the row relative to the top of the text area.
	ScreenRow int
	// Line is the document line shown on the row.
	Line int
	// WrapRow is the wrapped row index within Line.
	WrapRow int
	// Layout is the layout of Line.
	Layout *LineLayout
}

// Resolver maps document offsets and spans to text-area screen geometry.
// Coordinates are relative to the text area's top-left corner.
type Resolver struct {
	doc   *document.Document
	cache *Cache
	vp    *viewport.Viewport
}

// NewResolver creates a resolver over doc using the cache's engine and
// the given viewport.
func NewResolver(doc *document.Document, cache *Cache, vp *viewport.Viewport) *Resolver {
	return &Resolver{doc: doc, cache: cache, vp: vp}
}

// Document returns the document being resolved against.
func (r *Resolver) Document() *document.Document {
	return r.doc
}

// LineLayout returns the layout of a document line.
func (r *Resolver) LineLayout(line int) *LineLayout {
	return r.cache.Get(line, r.doc.Line(line))
}

// LeftColumn is the horizontal scroll offset. Wrapped text never scrolls
// horizontally.
func (r *Resolver) LeftColumn() int {
	if r.cache.Engine().WrapWidth() > 0 {
		return 0
	}
	return r.vp.LeftColumn()
}

// VisibleRows returns the rows currently visible in the viewport.
func (r *Resolver) VisibleRows() []Row {
	height := r.vp.Height()
	rows := make([]Row, 0, height)
	for line := r.vp.TopLine(); line < r.doc.LineCount() && len(rows) < height; line++ {
		l := r.LineLayout(line)
		for wr := 0; wr < l.RowCount && len(rows) < height; wr++ {
			rows = append(rows, Row{ScreenRow: len(rows), Line: line, WrapRow: wr, Layout: l})
		}
	}
	return rows
}

// firstRows returns the screen row on which each visible line starts.
func (r *Resolver) firstRows() map[int]int {
	out := make(map[int]int)
	for _, row := range r.VisibleRows() {
		if row.WrapRow == 0 {
			out[row.Line] = row.ScreenRow
		} else if _, ok := out[row.Line]; !ok {
			out[row.Line] = row.ScreenRow - row.WrapRow
		}
	}
	return out
}

// Resolve returns the screen geometry of s. The second result is false
// when there is nothing to draw: s is zero-length or entirely outside the
// viewport.
//
// Each touched visual row contributes one rectangle. A span that contains
// a line break covers one extra cell after the end of that line.
func (r *Resolver) Resolve(s span.Span) (core.Region, bool) {
	if s.IsEmpty() {
		return nil, false
	}

	start := r.doc.OffsetToPoint(s.Start)
	end := r.doc.OffsetToPoint(s.End)
	firstRows := r.firstRows()
	width, height := r.vp.Width(), r.vp.Height()
	left := r.LeftColumn()
	clip := core.NewScreenRect(0, 0, height, width)

	var region core.Region
	for line := max(start.Line, r.vp.TopLine()); line <= end.Line; line++ {
		top, visible := firstRows[line]
		if !visible {
			if line > r.vp.TopLine() {
				break
			}
			continue
		}

		l := r.LineLayout(line)
		colStart := 0
		if line == start.Line {
			colStart = start.Column
		}
		visStart := l.VisualColumn(colStart)
		visEnd := l.Width + 1 // line break cell
		if line == end.Line {
			visEnd = l.VisualColumn(end.Column)
		}
		if visStart >= visEnd {
			continue
		}

		for wr := l.VisualRow(visStart); wr < l.RowCount; wr++ {
			rowStart := l.RowStartColumn(wr)
			rowEnd := l.RowEndColumn(wr)
			if wr == l.RowCount-1 {
				rowEnd = max(rowEnd, visEnd)
			}
			segStart := max(visStart, rowStart)
			segEnd := min(visEnd, rowEnd)
			if segStart >= segEnd {
				if visEnd <= rowEnd {
					break
				}
				continue
			}
			rect := core.NewScreenRect(top+wr, segStart-rowStart-left, top+wr+1, segEnd-rowStart-left)
			if rect = rect.Intersection(clip); !rect.IsEmpty() {
				region = append(region, rect)
			}
			if visEnd <= rowEnd {
				break
			}
		}
	}

	if region.IsEmpty() {
		return nil, false
	}
	return region, true
}

// PositionOf returns the screen position of offset.
// The second result is false when the position is not visible.
func (r *Resolver) PositionOf(offset int) (core.ScreenPos, bool) {
	p := r.doc.OffsetToPoint(offset)
	top, ok := r.firstRows()[p.Line]
	if !ok {
		return core.ScreenPos{}, false
	}
	l := r.LineLayout(p.Line)
	vis := l.VisualColumn(p.Column)
	wr := l.VisualRow(vis)
	pos := core.ScreenPos{Row: top + wr, Col: vis - l.RowStartColumn(wr) - r.LeftColumn()}
	if pos.Row >= r.vp.Height() || pos.Col < 0 || pos.Col >= r.vp.Width() {
		return pos, false
	}
	return pos, true
}

// OffsetAt returns the document offset shown at a text-area position.
// Positions past the end of a row map to the end of that row's text.
func (r *Resolver) OffsetAt(pos core.ScreenPos) int {
	rows := r.VisibleRows()
	if len(rows) == 0 || pos.Row < 0 {
		return r.doc.LineStart(r.vp.TopLine())
	}
	if pos.Row >= len(rows) {
		return r.doc.Len()
	}
	row := rows[pos.Row]
	l := row.Layout
	vis := l.RowStartColumn(row.WrapRow) + max(0, pos.Col+r.LeftColumn())
	if rowEnd := l.RowEndColumn(row.WrapRow); vis >= rowEnd {
		if row.WrapRow < l.RowCount-1 {
			vis = rowEnd - 1
		} else {
			vis = l.Width
		}
	}
	col := l.BufferColumn(vis)
	return r.doc.PointToOffset(document.Point{Line: row.Line, Column: col})
}
