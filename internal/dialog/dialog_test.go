package dialog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/card"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/registry"
)

type fakeSurface struct {
	writes []string
}

func (f *fakeSurface) Reset()                {}
func (f *fakeSurface) Cursor(x, y int)       {}
func (f *fakeSurface) Write(text string)     { f.writes = append(f.writes, text) }
func (f *fakeSurface) SaveCursor()           {}
func (f *fakeSurface) RestoreCursor()        {}
func (f *fakeSurface) LoseConnection()       {}

func TestStackOnlyTopHandlesInput(t *testing.T) {
	var s Stack
	help := NewHelp()
	s.Push(help)
	handled := s.HandleInput('x', ModNone)
	assert.True(t, handled)
	assert.Equal(t, 0, s.Len(), "help dialog closes on any key")
}

func TestStackFallsThroughWhenEmpty(t *testing.T) {
	var s Stack
	assert.False(t, s.HandleInput('h', ModNone))
}

func TestChatAppendsAndSends(t *testing.T) {
	ring := registry.NewChatRing(50)
	ring.Append("bob", "hi")
	var sent string
	c := NewChat(ring.Lines, func(text string) { sent = text })
	c.HandleInput('h', ModNone)
	c.HandleInput('i', ModNone)
	c.HandleInput('\r', ModNone)
	assert.Equal(t, "hi", sent)

	fs := &fakeSurface{}
	c.Draw(fs, Rect{X: 0, Y: 0, W: 20, H: 5})
	require.NotEmpty(t, fs.writes)
	assert.True(t, strings.Contains(fs.writes[0], "bob: hi"))
}

func TestSessionAdminClampsAndCommits(t *testing.T) {
	called := false
	var committed game.Settings
	admin := NewSessionAdmin(game.DefaultSettings(), func(s game.Settings) {
		called = true
		committed = s
	})
	admin.HandleInput('9', ModNone)
	admin.HandleInput('9', ModNone)
	admin.HandleInput('r', ModCtrl)
	require.True(t, called)
	assert.Equal(t, 9, committed.WerewolfCount)
	assert.True(t, admin.Closed())
}

func TestSessionAdminTogglesRole(t *testing.T) {
	var committed game.Settings
	admin := NewSessionAdmin(game.DefaultSettings(), func(s game.Settings) { committed = s })
	admin.HandleInput('s', ModNone)
	admin.HandleInput('r', ModCtrl)
	assert.True(t, committed.HasRole(card.Seer))
}

func TestChoosePlayerCyclesAndChooses(t *testing.T) {
	var chosen string
	d := NewChoosePlayer("pick one", []string{"alice", "bob", "carol"}, func(c string) { chosen = c }, nil)
	d.HandleInput(KeyArrowDown, ModNone)
	d.HandleInput('\r', ModNone)
	assert.Equal(t, "bob", chosen)
	assert.True(t, d.Closed())
}

func TestChoosePlayerCancel(t *testing.T) {
	cancelled := false
	d := NewChoosePlayer("pick one", []string{"alice"}, nil, func() { cancelled = true })
	d.HandleInput('q', ModNone)
	assert.True(t, cancelled)
	assert.True(t, d.Closed())
}

func TestBriefMessageAutoCloses(t *testing.T) {
	done := make(chan struct{})
	m := NewBriefMessage("bye", 10*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("brief message never auto-closed")
	}
	assert.True(t, m.Closed())
}

func TestSystemMessageRequiresDismissal(t *testing.T) {
	m := NewSystemMessage("server shutting down")
	assert.False(t, m.Closed())
	m.HandleInput('x', ModNone)
	assert.True(t, m.Closed())
}
