// Package viewport provides viewport management for the renderer.
package viewport

import "sync"

// Viewport represents the visible portion of the document: the first
// visible buffer line, the horizontal scroll offset and the size of the
// text area in cells.
type Viewport struct {
	mu sync.RWMutex

	topLine    int
	leftColumn int

	width  int
	height int

	// scrolloff keeps the cursor this many lines from the top/bottom edge
	scrolloff int

	// maxLine is the number of lines in the document (0 = unknown)
	maxLine int
}

// NewViewport creates a viewport with the given size.
// Width and height are clamped to a minimum of 1 to prevent underflow.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:     max(1, width),
		height:    max(1, height),
		scrolloff: 2,
	}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// LeftColumn returns the first visible visual column.
func (v *Viewport) LeftColumn() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.leftColumn
}

// Resize updates the viewport size.
// Returns true if the size changed.
func (v *Viewport) Resize(width, height int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	width = max(1, width)
	height = max(1, height)
	if width == v.width && height == v.height {
		return false
	}
	v.width = width
	v.height = height
	return true
}

// SetMaxLine sets the number of lines in the document and clamps the
// top line to it.
func (v *Viewport) SetMaxLine(maxLine int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.maxLine = max(0, maxLine)
	v.topLine = v.clampLine(v.topLine)
}

// SetScrolloff sets how many lines are kept between the cursor and the
// viewport edges by EnsureVisible.
func (v *Viewport) SetScrolloff(lines int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolloff = max(0, lines)
}

func (v *Viewport) clampLine(line int) int {
	if v.maxLine > 0 && line >= v.maxLine {
		line = v.maxLine - 1
	}
	return max(0, line)
}

// ScrollTo scrolls to show the given line at the top.
// Returns true if the viewport moved.
func (v *Viewport) ScrollTo(line int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	line = v.clampLine(line)
	if line == v.topLine {
		return false
	}
	v.topLine = line
	return true
}

// ScrollBy scrolls by a delta number of lines.
// Returns true if the viewport moved.
func (v *Viewport) ScrollBy(deltaLines int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	line := v.clampLine(v.topLine + deltaLines)
	if line == v.topLine {
		return false
	}
	v.topLine = line
	return true
}

// ScrollHorizontal sets the first visible column.
// Returns true if the viewport moved.
func (v *Viewport) ScrollHorizontal(col int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	col = max(0, col)
	if col == v.leftColumn {
		return false
	}
	v.leftColumn = col
	return true
}

// EnsureVisible scrolls the minimum amount needed to bring line and
// visual column col into view, honouring the scrolloff margin.
// Returns true if the viewport moved.
func (v *Viewport) EnsureVisible(line, col int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	top, left := v.topLine, v.leftColumn
	margin := min(v.scrolloff, (v.height-1)/2)

	if line-margin < v.topLine {
		v.topLine = v.clampLine(line - margin)
	} else if line+margin >= v.topLine+v.height {
		v.topLine = v.clampLine(line + margin - v.height + 1)
	}

	if col < v.leftColumn {
		v.leftColumn = max(0, col)
	} else if col >= v.leftColumn+v.width {
		v.leftColumn = col - v.width + 1
	}

	return top != v.topLine || left != v.leftColumn
}
