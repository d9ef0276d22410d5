// Package document provides the read-only text snapshot the blur overlay
// works against. Offsets are rune (character) offsets.
package document

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dshills/blurrer/internal/span"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed; Column counts runes.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Document is an immutable text snapshot with a line index.
type Document struct {
	text       []rune
	lineStarts []int
	path       string
}

// New creates a document from a string. CRLF and CR line endings are
// normalized to LF.
func New(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	d := &Document{text: []rune(text)}
	d.lineStarts = append(d.lineStarts, 0)
	for i, r := range d.text {
		if r == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

// FromReader creates a document from an io.Reader.
func FromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return New(string(data)), nil
}

// Load reads a document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", path, err)
	}
	d := New(string(data))
	d.path = path
	return d, nil
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string {
	return d.path
}

// Len returns the document length in characters.
func (d *Document) Len() int {
	return len(d.text)
}

// Text returns the full document text.
func (d *Document) Text() string {
	return string(d.text)
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// LineStart returns the offset of the first character of line.
func (d *Document) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	return d.lineStarts[line]
}

// LineEnd returns the offset just past the last character of line,
// excluding the newline.
func (d *Document) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line+1 >= len(d.lineStarts) {
		return len(d.text)
	}
	return d.lineStarts[line+1] - 1
}

// Line returns the text of line without its newline.
func (d *Document) Line(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	return string(d.text[d.LineStart(line):d.LineEnd(line)])
}

// Clamp limits offset to [0, Len()].
func (d *Document) Clamp(offset int) int {
	return max(0, min(offset, len(d.text)))
}

// OffsetToPoint converts a character offset to a line/column point.
func (d *Document) OffsetToPoint(offset int) Point {
	offset = d.Clamp(offset)
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return Point{Line: line, Column: offset - d.lineStarts[line]}
}

// PointToOffset converts a line/column point to a character offset.
// Columns past the end of the line clamp to the line end.
func (d *Document) PointToOffset(p Point) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	start := d.LineStart(p.Line)
	end := d.LineEnd(p.Line)
	return max(start, min(start+p.Column, end))
}

// Slice returns the text covered by s, clamped to the document.
func (d *Document) Slice(s span.Span) string {
	start := d.Clamp(s.Start)
	end := d.Clamp(s.End)
	if start >= end {
		return ""
	}
	return string(d.text[start:end])
}

// Find returns the next occurrence of needle at or after from, wrapping to
// the start of the document.
func (d *Document) Find(needle string, from int) (span.Span, bool) {
	n := []rune(needle)
	if len(n) == 0 || len(n) > len(d.text) {
		return span.Span{}, false
	}
	from = d.Clamp(from)
	total := len(d.text) - len(n) + 1
	for i := 0; i < total; i++ {
		pos := (from + i) % total
		if runesEqual(d.text[pos:pos+len(n)], n) {
			return span.Span{Start: pos, End: pos + len(n)}, true
		}
	}
	return span.Span{}, false
}

func runesEqual(a, b []rune) bool {
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
