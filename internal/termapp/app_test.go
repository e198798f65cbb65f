package termapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
	"github.com/txwerewolves/wwserver/internal/terminal"
)

type nullSurface struct{}

func (nullSurface) Reset()            {}
func (nullSurface) Cursor(x, y int)   {}
func (nullSurface) Write(text string) {}
func (nullSurface) SaveCursor()       {}
func (nullSurface) RestoreCursor()    {}
func (nullSurface) LoseConnection()   {}

func newHarness() (*registry.UserRegistry, *registry.SessionRegistry, *signalbus.Bus) {
	users := registry.NewUserRegistry()
	sessions := registry.NewSessionRegistry()
	return users, sessions, signalbus.New(sessions, users)
}

func newApp(t *testing.T, userID string, users *registry.UserRegistry, sessions *registry.SessionRegistry, bus *signalbus.Bus) *App {
	t.Helper()
	u := users.Register(userID)
	a := New(userID, nullSurface{}, users, sessions, bus)
	u.SetApp(a)
	return a
}

func TestNewAppStartsUnjoined(t *testing.T) {
	users, sessions, bus := newHarness()
	a := newApp(t, "alice", users, sessions, bus)
	assert.Equal(t, lobby.Unjoined, a.lobby.State())
}

func TestCreateInviteAcceptStartFlow(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	member := newApp(t, "bob", users, sessions, bus)

	require.NoError(t, owner.CreateSession())
	assert.Equal(t, lobby.WaitingForAccepts, owner.lobby.State())

	require.NoError(t, owner.Invite("bob"))
	assert.Equal(t, lobby.Invited, member.lobby.State())

	require.NoError(t, member.Accept())
	assert.Equal(t, lobby.Accepted, member.lobby.State())

	require.NoError(t, owner.StartSession())
	assert.Equal(t, lobby.SessionStarted, owner.lobby.State())
	assert.Equal(t, lobby.SessionStarted, member.lobby.State())
	assert.NotNil(t, owner.currentGame())
	assert.Same(t, owner.currentGame(), member.currentGame())
}

func TestRejectReturnsToUnjoined(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	member := newApp(t, "bob", users, sessions, bus)

	require.NoError(t, owner.CreateSession())
	require.NoError(t, owner.Invite("bob"))
	require.NoError(t, member.Reject())
	assert.Equal(t, lobby.Unjoined, member.lobby.State())
	assert.Empty(t, member.SessionID())
}

func TestCancelByOwnerShutsDownSession(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	member := newApp(t, "bob", users, sessions, bus)

	require.NoError(t, owner.CreateSession())
	require.NoError(t, owner.Invite("bob"))
	require.NoError(t, member.Accept())
	sid := owner.SessionID()

	require.NoError(t, owner.Cancel())
	assert.Equal(t, lobby.Unjoined, owner.lobby.State())
	assert.Equal(t, lobby.Unjoined, member.lobby.State())
	assert.Nil(t, sessions.Get(sid))
}

func TestCancelShutsDownSessionAfterGameStarted(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	member := newApp(t, "bob", users, sessions, bus)

	require.NoError(t, owner.CreateSession())
	require.NoError(t, owner.Invite("bob"))
	require.NoError(t, member.Accept())
	require.NoError(t, owner.StartSession())
	require.Equal(t, lobby.SessionStarted, owner.lobby.State())
	sid := owner.SessionID()

	require.NoError(t, owner.Cancel())
	assert.Equal(t, lobby.Unjoined, owner.lobby.State())
	assert.Equal(t, lobby.Unjoined, member.lobby.State())
	assert.Nil(t, sessions.Get(sid))
}

func TestChatAndSettingsRoundTrip(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	require.NoError(t, owner.CreateSession())

	owner.sendChat("hello")
	lines := owner.chatScrollback()
	require.Len(t, lines, 1)
	assert.Equal(t, "alice", lines[0].Sender)

	session := sessions.Get(owner.SessionID())
	settings := session.Settings()
	settings.WerewolfCount = 4
	owner.commitSettings(settings)
	assert.Equal(t, 4, session.Settings().WerewolfCount)
	assert.Nil(t, owner.currentGame())
}

var _ terminal.Surface = nullSurface{}
