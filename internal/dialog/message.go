package dialog

import (
	"sync"
	"time"

	"github.com/txwerewolves/wwserver/internal/terminal"
)

// Message is the BriefMessage/SystemMessage dialog kind (spec.md §4.4):
// a short text banner that any key dismisses, and that a BriefMessage
// additionally auto-dismisses after a timeout. SystemMessage is the same
// type with no timer (stays until the user dismisses it).
type Message struct {
	text     string
	system   bool
	onRedraw func()

	mu     sync.Mutex
	closed bool
	timer  *time.Timer
}

// NewBriefMessage shows text and schedules an automatic close after d.
// onRedraw, if non-nil, is called once the timer fires so the owning
// application can repaint without the timer having to touch a Surface
// from its own goroutine.
func NewBriefMessage(text string, d time.Duration, onRedraw func()) *Message {
	m := &Message{text: text, onRedraw: onRedraw}
	m.timer = time.AfterFunc(d, m.expire)
	return m
}

// NewSystemMessage shows text with no auto-dismiss timer.
func NewSystemMessage(text string) *Message {
	return &Message{text: text, system: true}
}

func (m *Message) expire() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.onRedraw != nil {
		m.onRedraw()
	}
}

func (m *Message) Draw(s terminal.Surface, frame Rect) {
	s.Cursor(frame.X, frame.Y)
	s.Write(m.text)
}

func (m *Message) HandleInput(key rune, mod KeyMod) bool {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return true
}

func (m *Message) SetCursorPos(s terminal.Surface) bool { return false }

func (m *Message) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Message) Uninstall() {
	if m.timer != nil {
		m.timer.Stop()
	}
}
