package app

import (
	"github.com/dshills/blurrer/internal/blur"
	"github.com/dshills/blurrer/internal/renderer/overlay"
)

// SurfaceAdapter exposes an overlay manager as a blur surface.
type SurfaceAdapter struct {
	overlays *overlay.Manager
}

// NewSurfaceAdapter creates a surface drawing into overlays.
func NewSurfaceAdapter(overlays *overlay.Manager) *SurfaceAdapter {
	return &SurfaceAdapter{overlays: overlays}
}

// Clear removes every overlay.
func (s *SurfaceAdapter) Clear() {
	s.overlays.Clear()
}

// Add draws one overlay. Commands with no geometry are rejected.
func (s *SurfaceAdapter) Add(cmd blur.DrawCommand) error {
	if cmd.Region.IsEmpty() {
		return ErrEmptyRegion
	}
	s.overlays.Add(cmd.Span, cmd.Region, cmd.Brush)
	return nil
}
