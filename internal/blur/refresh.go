package blur

import (
	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/renderer/overlay"
	"github.com/dshills/blurrer/internal/span"
)

// Resolver maps a span to the screen region it occupies.
// The second result is false when there is nothing to draw: the span is
// zero-length or entirely outside the viewport.
type Resolver interface {
	Resolve(s span.Span) (core.Region, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(s span.Span) (core.Region, bool)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(s span.Span) (core.Region, bool) {
	return f(s)
}

// DrawCommand asks the surface to draw one overlay.
type DrawCommand struct {
	Span   span.Span
	Region core.Region
	Brush  overlay.Brush
}

// Plan computes the overlays for one refresh.
//
// It returns nil when sel selects nothing. Otherwise it inverts sel within
// [0, docLen) and returns one command per resolvable complement span, in
// document order. Unresolvable spans are skipped.
func Plan(sel span.Selection, docLen int, r Resolver, brush overlay.Brush) []DrawCommand {
	cmds, _ := plan(sel, docLen, r, brush, false)
	return cmds
}

// plan also returns the number of complement spans that did not resolve.
func plan(sel span.Selection, docLen int, r Resolver, brush overlay.Brush, trimEmpty bool) ([]DrawCommand, int) {
	if sel.IsEmpty() {
		return nil, 0
	}

	complement := span.Invert(sel, docLen)
	if trimEmpty {
		complement = span.TrimEmpty(complement)
	}

	var cmds []DrawCommand
	skipped := 0
	for _, sp := range complement {
		region, ok := r.Resolve(sp)
		if !ok {
			skipped++
			continue
		}
		cmds = append(cmds, DrawCommand{Span: sp, Region: region, Brush: brush})
	}
	return cmds, skipped
}
