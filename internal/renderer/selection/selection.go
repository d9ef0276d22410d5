// Package selection tracks the editor's selections as character offsets.
package selection

import (
	"sort"
	"sync"

	"github.com/dshills/blurrer/internal/span"
)

// Range is a selection between an anchor and the active head.
// Head may come before Anchor.
type Range struct {
	// Anchor is where the selection was started.
	Anchor int
	// Head is the active end, where the caret is drawn.
	Head int
}

// Caret returns a zero-length range at offset.
func Caret(offset int) Range {
	return Range{Anchor: offset, Head: offset}
}

// IsEmpty returns true if the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Anchor == r.Head
}

// Span returns the range as a normalized span.
func (r Range) Span() span.Span {
	return span.New(r.Anchor, r.Head)
}

// Contains returns true if offset is selected by the range.
func (r Range) Contains(offset int) bool {
	return r.Span().Contains(offset)
}

func (r Range) clamp(docLen int) Range {
	return Range{Anchor: clamp(r.Anchor, docLen), Head: clamp(r.Head, docLen)}
}

func clamp(offset, docLen int) int {
	return max(0, min(offset, docLen))
}

// Manager holds a primary selection and any number of secondary ones.
// All offsets are clamped to [0, docLen].
type Manager struct {
	mu        sync.RWMutex
	primary   Range
	secondary []Range
	docLen    int
	listeners []func()
}

// NewManager creates a manager with a caret at offset zero.
func NewManager(docLen int) *Manager {
	return &Manager{docLen: max(docLen, 0)}
}

// OnChange registers fn to be called after every change.
// Callbacks run on the goroutine that made the change, outside the lock.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// update applies fn under the write lock and notifies listeners if the
// selection changed.
func (m *Manager) update(fn func()) {
	m.mu.Lock()
	before := m.snapshot()
	fn()
	changed := !equalRanges(before, m.snapshot())
	listeners := m.listeners
	m.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l()
		}
	}
}

func (m *Manager) snapshot() []Range {
	out := make([]Range, 0, 1+len(m.secondary))
	out = append(out, m.primary)
	return append(out, m.secondary...)
}

func equalRanges(a, b []Range) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DocLen returns the document length selections are clamped to.
func (m *Manager) DocLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docLen
}

// SetDocLen changes the document length and clamps every selection.
func (m *Manager) SetDocLen(n int) {
	m.update(func() {
		m.docLen = max(n, 0)
		m.primary = m.primary.clamp(m.docLen)
		for i := range m.secondary {
			m.secondary[i] = m.secondary[i].clamp(m.docLen)
		}
	})
}

// Primary returns the primary selection.
func (m *Manager) Primary() Range {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primary
}

// SetPrimary replaces the primary selection.
func (m *Manager) SetPrimary(r Range) {
	m.update(func() {
		m.primary = r.clamp(m.docLen)
	})
}

// AddSecondary adds a secondary selection.
func (m *Manager) AddSecondary(r Range) {
	m.update(func() {
		m.secondary = append(m.secondary, r.clamp(m.docLen))
	})
}

// Secondary returns all secondary selections.
func (m *Manager) Secondary() []Range {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Range, len(m.secondary))
	copy(result, m.secondary)
	return result
}

// ClearSecondary removes all secondary selections.
func (m *Manager) ClearSecondary() {
	m.update(func() {
		m.secondary = nil
	})
}

// Extend moves the primary head to offset, keeping the anchor.
func (m *Manager) Extend(offset int) {
	m.update(func() {
		m.primary.Head = clamp(offset, m.docLen)
	})
}

// MoveCaret collapses the primary selection to a caret at offset and
// drops secondary selections.
func (m *Manager) MoveCaret(offset int) {
	m.update(func() {
		m.primary = Caret(clamp(offset, m.docLen))
		m.secondary = nil
	})
}

// SelectAll selects the whole document.
func (m *Manager) SelectAll() {
	m.update(func() {
		m.primary = Range{Anchor: 0, Head: m.docLen}
		m.secondary = nil
	})
}

// Clear collapses the primary selection to its head and drops secondary
// selections.
func (m *Manager) Clear() {
	m.update(func() {
		m.primary = Caret(m.primary.Head)
		m.secondary = nil
	})
}

// IsActive returns true if any selection covers at least one character.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.primary.IsEmpty() {
		return true
	}
	for _, r := range m.secondary {
		if !r.IsEmpty() {
			return true
		}
	}
	return false
}

// Contains returns true if any selection contains offset.
func (m *Manager) Contains(offset int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.primary.Contains(offset) {
		return true
	}
	for _, r := range m.secondary {
		if r.Contains(offset) {
			return true
		}
	}
	return false
}

// Spans returns every selection as normalized spans sorted by start.
// Overlapping and touching ranges are merged. Carets are kept as
// zero-length spans unless they fall inside a selected range.
func (m *Manager) Spans() span.Selection {
	m.mu.RLock()
	ranges := m.snapshot()
	m.mu.RUnlock()

	return Merge(ranges)
}

// Merge normalizes ranges into a sorted selection.
func Merge(ranges []Range) span.Selection {
	if len(ranges) == 0 {
		return nil
	}

	var spans, carets span.Selection
	for _, r := range ranges {
		if r.IsEmpty() {
			carets = append(carets, r.Span())
		} else {
			spans = append(spans, r.Span())
		}
	}
	sortSpans(spans)

	result := make(span.Selection, 0, len(ranges))
	for _, sp := range spans {
		if n := len(result); n > 0 && sp.Start <= result[n-1].End {
			result[n-1].End = max(result[n-1].End, sp.End)
			continue
		}
		result = append(result, sp)
	}

	merged := len(result)
	for _, c := range carets {
		if covered(result[:merged], c.Start) || covered(result[merged:], c.Start) {
			continue
		}
		result = append(result, c)
	}
	sortSpans(result)
	return result
}

// covered reports whether offset is inside a range or equal to a caret.
func covered(spans span.Selection, offset int) bool {
	for _, sp := range spans {
		if sp.Contains(offset) || (sp.IsEmpty() && sp.Start == offset) {
			return true
		}
	}
	return false
}

func sortSpans(spans span.Selection) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
}
