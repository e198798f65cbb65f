package dialog

import (
	"strconv"

	"github.com/txwerewolves/wwserver/internal/card"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/terminal"
)

// roleKeys maps a single keystroke to the optional role it toggles. Each
// role gets its own letter — Seer/Robber/Troublemaker/Minion/Insomniac/
// Hunter/Tanner — so there is no ambiguity between insomniac and hunter.
var roleKeys = map[rune]card.Card{
	's': card.Seer,
	'r': card.Robber,
	't': card.Troublemaker,
	'm': card.Minion,
	'i': card.Insomniac,
	'h': card.Hunter,
	'y': card.Tanner,
}

// SessionAdmin is the CTRL-A owner-only dialog for editing pending game
// settings before starting or resetting a game (spec.md §4.4).
type SessionAdmin struct {
	pending  game.Settings
	onCommit func(game.Settings)
	closed   bool
}

// NewSessionAdmin seeds the dialog from the session's current settings.
func NewSessionAdmin(current game.Settings, onCommit func(game.Settings)) *SessionAdmin {
	return &SessionAdmin{pending: current, onCommit: onCommit}
}

func (d *SessionAdmin) Draw(s terminal.Surface, frame Rect) {
	s.Cursor(frame.X, frame.Y)
	s.Write("Session settings")
	s.Cursor(frame.X, frame.Y+1)
	s.Write("werewolves: " + strconv.Itoa(d.pending.WerewolfCount) + "  (1-9)")
	row := frame.Y + 2
	for key, c := range roleKeys {
		mark := " "
		if d.pending.HasRole(c) {
			mark = "x"
		}
		s.Cursor(frame.X, row)
		s.Write("[" + mark + "] " + string(key) + " " + c.String())
		row++
	}
	s.Cursor(frame.X, row+1)
	s.Write("CTRL-R to apply, esc to cancel")
}

func (d *SessionAdmin) HandleInput(key rune, mod KeyMod) bool {
	switch {
	case key == '\x1b':
		d.closed = true
	case key == 'r' && mod&ModCtrl != 0:
		d.pending.Validate()
		if d.onCommit != nil {
			d.onCommit(d.pending)
		}
		d.closed = true
	case key >= '1' && key <= '9':
		d.pending.WerewolfCount = int(key - '0')
	default:
		c, ok := roleKeys[key]
		if !ok {
			return false
		}
		d.pending.ToggleRole(c)
	}
	return true
}

func (d *SessionAdmin) SetCursorPos(s terminal.Surface) bool { return false }

func (d *SessionAdmin) Closed() bool { return d.closed }

func (d *SessionAdmin) Uninstall() {}
