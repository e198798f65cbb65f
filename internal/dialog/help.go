package dialog

import "github.com/txwerewolves/wwserver/internal/terminal"

// helpLines is the static key-binding reference shown by the Help dialog
// (spec.md §4.4). It lists application-level keys only; the role toggles
// are SessionAdmin's roleKeys, where Insomniac ('i') and Hunter ('h') get
// distinct bindings.
var helpLines = []string{
	"h          show this help",
	"TAB        open chat",
	"CTRL-A     session admin (owner only)",
	"CTRL-X     leave session (owner: shut it down)",
	"CTRL-D     disconnect",
	"arrows     move selection",
	"enter      confirm",
	"esc        close dialog (q also closes player lists)",
}

// Help is a static reference card. Any key closes it.
type Help struct {
	closed bool
}

// NewHelp constructs a Help dialog.
func NewHelp() *Help {
	return &Help{}
}

func (h *Help) Draw(s terminal.Surface, frame Rect) {
	s.Cursor(frame.X, frame.Y)
	s.Write(string(terminal.GlyphTopLeft))
	s.Cursor(frame.X+2, frame.Y+1)
	s.Write("Key bindings")
	for i, line := range helpLines {
		s.Cursor(frame.X+2, frame.Y+3+i)
		s.Write(line)
	}
}

func (h *Help) HandleInput(key rune, mod KeyMod) bool {
	h.closed = true
	return true
}

func (h *Help) SetCursorPos(s terminal.Surface) bool { return false }

func (h *Help) Closed() bool { return h.closed }

func (h *Help) Uninstall() {}
