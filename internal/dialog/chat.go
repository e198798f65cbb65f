package dialog

import (
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/terminal"
)

// Chat is the TAB-activated chat dialog (spec.md §4.4): shows the
// session's scrollback and lets the owner type and send a line.
type Chat struct {
	scrollback func() []registry.ChatLine
	onSend     func(text string)
	input      []rune
	closed     bool
}

// NewChat constructs a Chat dialog. scrollback is called on every Draw so
// newly arrived lines show up without reconstructing the dialog;
// onSend is invoked with the composed line on enter.
func NewChat(scrollback func() []registry.ChatLine, onSend func(text string)) *Chat {
	return &Chat{scrollback: scrollback, onSend: onSend}
}

func (c *Chat) Draw(s terminal.Surface, frame Rect) {
	lines := c.scrollback()
	start := 0
	visible := frame.H - 2
	if visible < 0 {
		visible = 0
	}
	if len(lines) > visible {
		start = len(lines) - visible
	}
	row := frame.Y
	for _, l := range lines[start:] {
		s.Cursor(frame.X, row)
		s.Write(l.Sender + ": " + l.Text)
		row++
	}
	s.Cursor(frame.X, frame.Y+frame.H-1)
	s.Write("> " + string(c.input))
}

func (c *Chat) HandleInput(key rune, mod KeyMod) bool {
	switch {
	case key == '\x1b':
		c.closed = true
	case key == '\r' || key == '\n':
		if len(c.input) > 0 && c.onSend != nil {
			c.onSend(string(c.input))
		}
		c.input = c.input[:0]
	case key == '\x7f' || key == '\b':
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	default:
		c.input = append(c.input, key)
	}
	return true
}

func (c *Chat) SetCursorPos(s terminal.Surface) bool { return false }

func (c *Chat) Closed() bool { return c.closed }

func (c *Chat) Uninstall() { c.input = nil }
