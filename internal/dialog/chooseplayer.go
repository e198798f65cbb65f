package dialog

import "github.com/txwerewolves/wwserver/internal/terminal"

// ChoosePlayer is a scrollable single-selection list (spec.md §4.4),
// reused for invite targets, seer/robber/troublemaker target picks, and
// voting. onChoose fires once, on enter; onCancel fires on esc/q.
type ChoosePlayer struct {
	prompt    string
	options   []string
	cursor    int
	onChoose  func(choice string)
	onCancel  func()
	closed    bool
}

// NewChoosePlayer builds the dialog over options, in the order given.
func NewChoosePlayer(prompt string, options []string, onChoose func(string), onCancel func()) *ChoosePlayer {
	return &ChoosePlayer{prompt: prompt, options: options, onChoose: onChoose, onCancel: onCancel}
}

func (d *ChoosePlayer) Draw(s terminal.Surface, frame Rect) {
	s.Cursor(frame.X, frame.Y)
	s.Write(d.prompt)
	for i, opt := range d.options {
		s.Cursor(frame.X, frame.Y+1+i)
		marker := "  "
		if i == d.cursor {
			marker = "> "
		}
		s.Write(marker + opt)
	}
}

func (d *ChoosePlayer) HandleInput(key rune, mod KeyMod) bool {
	switch key {
	case 'q', '\x1b':
		d.closed = true
		if d.onCancel != nil {
			d.onCancel()
		}
	case '\r', '\n':
		d.closed = true
		if len(d.options) > 0 && d.onChoose != nil {
			d.onChoose(d.options[d.cursor])
		}
	case 'j', KeyArrowDown:
		d.moveDown()
	case 'k', KeyArrowUp:
		d.moveUp()
	default:
		return false
	}
	return true
}

func (d *ChoosePlayer) moveDown() {
	if len(d.options) == 0 {
		return
	}
	d.cursor = (d.cursor + 1) % len(d.options)
}

func (d *ChoosePlayer) moveUp() {
	if len(d.options) == 0 {
		return
	}
	d.cursor = (d.cursor - 1 + len(d.options)) % len(d.options)
}

func (d *ChoosePlayer) SetCursorPos(s terminal.Surface) bool { return false }

func (d *ChoosePlayer) Closed() bool { return d.closed }

func (d *ChoosePlayer) Uninstall() {}
