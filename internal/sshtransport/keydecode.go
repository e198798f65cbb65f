package sshtransport

import (
	"bufio"

	"github.com/txwerewolves/wwserver/internal/dialog"
)

// decodeKey reads one logical keystroke off r, translating CSI arrow
// escape sequences and control bytes into the dialog package's rune/
// KeyMod vocabulary.
func decodeKey(r *bufio.Reader) (rune, dialog.KeyMod, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	if b == 0x1b {
		next, err := r.Peek(2)
		if err == nil && len(next) == 2 && next[0] == '[' {
			r.Discard(2)
			switch next[1] {
			case 'A':
				return dialog.KeyArrowUp, dialog.ModNone, nil
			case 'B':
				return dialog.KeyArrowDown, dialog.ModNone, nil
			case 'C':
				return dialog.KeyArrowRight, dialog.ModNone, nil
			case 'D':
				return dialog.KeyArrowLeft, dialog.ModNone, nil
			}
		}
		return '\x1b', dialog.ModNone, nil
	}

	if b >= 1 && b <= 26 && b != '\t' && b != '\r' {
		return rune('a' + b - 1), dialog.ModCtrl, nil
	}

	return rune(b), dialog.ModNone, nil
}
