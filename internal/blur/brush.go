package blur

import (
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/overlay"
)

// Opacity is how strongly the blur covers unselected text.
const Opacity = 0.8

// BrushFor returns the blur brush for a text area with the given
// background color.
func BrushFor(background core.Color) overlay.Brush {
	return overlay.Brush{Fill: background, Opacity: Opacity}
}

var defaultBackground = core.ColorBlack
