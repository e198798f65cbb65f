// Package dialog implements the dialog stack described in spec.md §4.4:
// only the top dialog is active, falls through to the application's
// command table when it does not consume a key, and each kind knows how
// to draw itself, accept input, and uninstall.
package dialog

import "github.com/txwerewolves/wwserver/internal/terminal"

// KeyMod is a bitmask of modifier keys accompanying a keystroke.
type KeyMod uint8

const (
	ModNone  KeyMod = 0
	ModCtrl  KeyMod = 1 << 0
	ModShift KeyMod = 1 << 1
	ModAlt   KeyMod = 1 << 2
)

// Special keys the terminal transport decodes out of multi-byte escape
// sequences before handing input to the dialog stack, using rune values
// outside the valid Unicode range so they can never collide with a typed
// character.
const (
	KeyArrowUp rune = -(iota + 1)
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// Rect is the screen region a dialog is asked to draw into.
type Rect struct {
	X, Y, W, H int
}

// Dialog is one entry in the stack (spec.md §4.4). HandleInput returns
// whether the key was consumed; Closed reports whether the stack owner
// should pop and Uninstall it after this call.
type Dialog interface {
	Draw(s terminal.Surface, frame Rect)
	HandleInput(key rune, mod KeyMod) (handled bool)
	SetCursorPos(s terminal.Surface) (positioned bool)
	Closed() bool
	Uninstall()
}

// Stack holds zero or more dialogs; only the top is ever drawn or asked
// to handle input. Spec.md §9 permits generalizing beyond a stack-of-one
// as long as "top handles first, fallthrough otherwise" holds, which is
// exactly what this type does.
type Stack struct {
	dialogs []Dialog
}

// Push installs d as the new top of stack.
func (s *Stack) Push(d Dialog) {
	s.dialogs = append(s.dialogs, d)
}

// Top returns the active dialog, or nil if the stack is empty.
func (s *Stack) Top() Dialog {
	if len(s.dialogs) == 0 {
		return nil
	}
	return s.dialogs[len(s.dialogs)-1]
}

// Len reports how many dialogs are currently stacked.
func (s *Stack) Len() int {
	return len(s.dialogs)
}

// HandleInput dispatches to the top dialog. If that dialog reports
// Closed() afterward, it is popped and uninstalled. Returns whether the
// key was consumed by a dialog at all (false means the caller should try
// its own command table).
func (s *Stack) HandleInput(key rune, mod KeyMod) bool {
	top := s.Top()
	if top == nil {
		return false
	}
	handled := top.HandleInput(key, mod)
	if top.Closed() {
		s.pop()
	}
	return handled
}

func (s *Stack) pop() {
	n := len(s.dialogs)
	if n == 0 {
		return
	}
	top := s.dialogs[n-1]
	s.dialogs = s.dialogs[:n-1]
	top.Uninstall()
}

// Draw renders only the top-most dialog, if any.
func (s *Stack) Draw(surface terminal.Surface, frame Rect) {
	if top := s.Top(); top != nil {
		top.Draw(surface, frame)
	}
}

// SetCursorPos positions the cursor for the top dialog, if any.
func (s *Stack) SetCursorPos(surface terminal.Surface) bool {
	if top := s.Top(); top != nil {
		return top.SetCursorPos(surface)
	}
	return false
}

// CloseAll uninstalls every dialog, top to bottom.
func (s *Stack) CloseAll() {
	for s.Len() > 0 {
		s.pop()
	}
}
