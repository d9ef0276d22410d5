package overlay

import (
	"sync"

	"github.com/dshills/blurrer/internal/renderer/core"
	"github.com/dshills/blurrer/internal/span"
)

// Manager holds the overlays currently displayed. The set is replaced
// wholesale on every refresh: Clear followed by Add calls.
type Manager struct {
	mu       sync.RWMutex
	overlays []*Overlay
	enabled  bool
}

// NewManager creates an empty, enabled overlay manager.
func NewManager() *Manager {
	return &Manager{enabled: true}
}

// Add registers an overlay covering region and returns it.
func (m *Manager) Add(s span.Span, region core.Region, brush Brush) *Overlay {
	o := New(s, region, brush)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlays = append(m.overlays, o)
	return o
}

// Clear removes all overlays.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlays = nil
}

// Count returns the number of overlays.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.overlays)
}

// Overlays returns the overlays in the order they were added.
func (m *Manager) Overlays() []*Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Overlay, len(m.overlays))
	copy(out, m.overlays)
	return out
}

// OnRow returns the overlays that cover any cell of row.
func (m *Manager) OnRow(row int) []*Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Overlay
	for _, o := range m.overlays {
		if o.OnRow(row) {
			out = append(out, o)
		}
	}
	return out
}

// SetEnabled shows or hides all overlays without removing them.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Enabled returns whether overlays are shown.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Compositor composites overlays onto rendered rows.
type Compositor struct {
	manager *Manager
}

// NewCompositor creates a compositor reading from manager.
func NewCompositor(manager *Manager) *Compositor {
	return &Compositor{manager: manager}
}

// CompositeRow applies every overlay covering row to cells, where cells[i]
// is drawn at text-area column i. cells is not modified; a new slice is
// returned when any overlay applies.
func (c *Compositor) CompositeRow(row int, cells []core.Cell) []core.Cell {
	if !c.manager.Enabled() {
		return cells
	}
	overlays := c.manager.OnRow(row)
	if len(overlays) == 0 {
		return cells
	}

	result := make([]core.Cell, len(cells))
	copy(result, cells)

	for _, o := range overlays {
		for _, cols := range o.Region.ColumnsOnRow(row) {
			for col := max(cols[0], 0); col < cols[1] && col < len(result); col++ {
				result[col] = o.Brush.Apply(result[col])
			}
		}
	}
	return result
}
