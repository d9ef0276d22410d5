// Package overlay provides the overlay surface: transient overlays drawn
// over screen regions and composited onto the rendered text.
package overlay

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/span"
)

// Brush is the fill painted over an overlay's cells.
type Brush struct {
	// Fill is the overlay color.
	Fill core.Color

	// Opacity is how strongly Fill covers the cell, 0.0 to 1.0.
	Opacity float64
}

// IsZero returns true if the brush paints nothing.
func (b Brush) IsZero() bool {
	return b.Opacity <= 0
}

// String returns a short description of the brush.
func (b Brush) String() string {
	return fmt.Sprintf("%s@%.2f", b.Fill, b.Opacity)
}

// Apply composites the brush over a cell.
//
// Foreground and background are blended toward Fill. Text drawn with the
// terminal's default colors cannot be blended, so such cells are dimmed
// instead once the brush is at least half opaque.
func (b Brush) Apply(cell core.Cell) core.Cell {
	if b.IsZero() {
		return cell
	}
	opacity := min(b.Opacity, 1)

	fg := cell.Style.Foreground
	bg := cell.Style.Background
	if b.Fill.IsDefault() || fg.IsDefault() {
		if opacity >= 0.5 {
			cell.Style.Attributes |= core.AttrDim
		}
	}
	if !b.Fill.IsDefault() {
		if !fg.IsDefault() {
			cell.Style.Foreground = fg.Blend(b.Fill, opacity)
		}
		if bg.IsDefault() {
			cell.Style.Background = b.Fill
		} else {
			cell.Style.Background = bg.Blend(b.Fill, opacity)
		}
	}
	return cell
}

// Overlay is one overlay tied to a document span.
type Overlay struct {
	// ID identifies the overlay in logs; overlays are never looked up by ID.
	ID     string
	Span   span.Span
	Region core.Region
	Brush  Brush
}

// New creates an overlay with a fresh ID.
func New(s span.Span, region core.Region, brush Brush) *Overlay {
	return &Overlay{
		ID:     uuid.NewString(),
		Span:   s,
		Region: region,
		Brush:  brush,
	}
}

// OnRow returns true if the overlay covers any cell of row.
func (o *Overlay) OnRow(row int) bool {
	for _, r := range o.Region {
		if row >= r.Top && row < r.Bottom && !r.IsEmpty() {
			return true
		}
	}
	return false
}
