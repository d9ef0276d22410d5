// Package statusline draws the bottom status bar.
package statusline

import (
	"fmt"

	"github.com/dshills/blurrer/internal/renderer/backend"
	"github.com/dshills/blurrer/internal/renderer/core"
)

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageError
)

// StatusLine renders the blur state, file name, selection summary and
// caret position, or a message in their place.
type StatusLine struct {
	filename   string
	blurOn     bool
	line       int // 1-indexed
	col        int // 1-indexed
	totalLines int
	selections int
	selected   int
	overlays   int

	message     string
	messageType MessageType

	barStyle  core.Style
	modeStyle core.Style
	errStyle  core.Style
}

// New creates a status line with default styles.
func New() *StatusLine {
	return &StatusLine{
		blurOn:    true,
		barStyle:  core.DefaultStyle().Reverse(),
		modeStyle: core.DefaultStyle().Reverse().Bold(),
		errStyle:  core.DefaultStyle().Bold(),
	}
}

// SetColors derives the bar styles from the theme colors.
func (s *StatusLine) SetColors(fg, bg core.Color) {
	s.barStyle = core.NewStyle(bg).WithBackground(fg)
	s.modeStyle = s.barStyle.Bold()
	s.errStyle = core.NewStyle(fg).WithBackground(bg).Bold()
}

// SetFilename updates the displayed file name.
func (s *StatusLine) SetFilename(filename string) {
	s.filename = filename
}

// SetBlur updates the blur indicator.
func (s *StatusLine) SetBlur(on bool) {
	s.blurOn = on
}

// SetPosition updates the caret position (1-indexed) and line count.
func (s *StatusLine) SetPosition(line, col, totalLines int) {
	s.line, s.col, s.totalLines = line, col, totalLines
}

// SetSelection updates the selection summary: number of ranges, selected
// characters and overlays drawn.
func (s *StatusLine) SetSelection(ranges, chars, overlays int) {
	s.selections, s.selected, s.overlays = ranges, chars, overlays
}

// SetMessage displays a message in place of the status bar.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message.
func (s *StatusLine) Message() (string, MessageType) {
	return s.message, s.messageType
}

// Render draws the status line on row using width columns.
func (s *StatusLine) Render(b backend.Backend, row, width int) {
	if s.message != "" {
		s.renderMessage(b, row, width)
		return
	}

	b.Fill(core.NewScreenRect(row, 0, row+1, width), core.NewStyledCell(' ', s.barStyle))

	col := put(b, row, 0, width, s.modeText(), s.modeStyle)
	col = put(b, row, col+1, width, s.fileText(), s.barStyle)

	right := s.positionText()
	if start := width - len(right) - 1; start > col {
		put(b, row, start, width, right, s.barStyle)
	}
}

func (s *StatusLine) renderMessage(b backend.Backend, row, width int) {
	style := s.barStyle
	if s.messageType == MessageError {
		style = s.errStyle
	}
	b.Fill(core.NewScreenRect(row, 0, row+1, width), core.NewStyledCell(' ', style))
	put(b, row, 0, width, s.message, style)
}

func (s *StatusLine) modeText() string {
	if s.blurOn {
		return " BLUR "
	}
	return " PLAIN "
}

func (s *StatusLine) fileText() string {
	name := s.filename
	if name == "" {
		name = "[No Name]"
	}
	if s.selected == 0 {
		return name
	}
	return fmt.Sprintf("%s  %d sel, %d chars, %d overlays", name, s.selections, s.selected, s.overlays)
}

// positionText formats "Ln 12, Col 4 | 40%".
func (s *StatusLine) positionText() string {
	line, col := max(s.line, 1), max(s.col, 1)
	result := fmt.Sprintf("Ln %d, Col %d", line, col)

	switch {
	case s.totalLines <= 1:
	case line == 1:
		result += " | Top"
	case line >= s.totalLines:
		result += " | Bot"
	default:
		result += fmt.Sprintf(" | %d%%", (line-1)*100/(s.totalLines-1))
	}
	return result
}

// put writes text starting at col and returns the column after it.
func put(b backend.Backend, row, col, width int, text string, style core.Style) int {
	for _, c := range core.CellsFromString(text, style) {
		if col >= width {
			break
		}
		b.SetCell(col, row, c)
		col++
	}
	return col
}
