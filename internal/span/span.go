// Package span provides half-open character ranges over a document and the
// selection complement used by the blur overlay.
package span

import "fmt"

// Span is a half-open interval [Start, End) of character offsets.
type Span struct {
	Start int
	End   int
}

// New creates a span. Start and End are swapped if given in reverse order.
func New(start, end int) Span {
	if start > end {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// IsEmpty returns true if the span covers no characters.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if offset falls within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Overlaps returns true if the two spans share at least one character.
func (s Span) Overlaps(other Span) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// Intersect returns the overlap of two spans.
// The second result is false when the spans do not overlap.
func (s Span) Intersect(other Span) (Span, bool) {
	start := max(s.Start, other.Start)
	end := min(s.End, other.End)
	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// String returns the span as "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Selection is an ordered set of spans, sorted by start offset.
type Selection []Span

// IsEmpty returns true if the selection selects no characters.
// A selection made only of carets (zero-length spans) is empty.
func (s Selection) IsEmpty() bool {
	for _, sp := range s {
		if !sp.IsEmpty() {
			return false
		}
	}
	return true
}

// Len returns the total number of selected characters.
func (s Selection) Len() int {
	n := 0
	for _, sp := range s {
		n += sp.Len()
	}
	return n
}

// Sorted returns true if spans are ordered by start and do not overlap.
func (s Selection) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Start < s[i-1].Start {
			return false
		}
		if s[i].Overlaps(s[i-1]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	copy(out, s)
	return out
}
