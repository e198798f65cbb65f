package webapp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/lobby"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

func newHarness() (*registry.UserRegistry, *registry.SessionRegistry, *signalbus.Bus) {
	users := registry.NewUserRegistry()
	sessions := registry.NewSessionRegistry()
	return users, sessions, signalbus.New(sessions, users)
}

func newApp(t *testing.T, userID string, users *registry.UserRegistry, sessions *registry.SessionRegistry, bus *signalbus.Bus) *App {
	t.Helper()
	u := users.Register(userID)
	a := New(userID, users, sessions, bus)
	u.SetApp(a)
	return a
}

func TestCreateInviteAcceptStartFlow(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	member := newApp(t, "bob", users, sessions, bus)

	require.NoError(t, owner.CreateSession())
	require.NoError(t, owner.Invite("bob"))
	assert.Equal(t, lobby.Invited, member.lobby.State())

	require.NoError(t, member.Accept())
	require.NoError(t, owner.StartSession())
	assert.Equal(t, lobby.SessionStarted, owner.lobby.State())
	assert.Same(t, owner.currentGame(), member.currentGame())
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

func TestAvailableActionsOffersCancelOnceSessionStarted(t *testing.T) {
	actions := availableActions(lobby.SessionStarted, nil)
	var ids []string
	for _, a := range actions {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "cancel")
}

func TestSubscribeReplaysBufferedEvents(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	owner.emit(EventStatus, StatusView{LobbyState: "unjoined"})

	ch, unsub := owner.Subscribe()
	defer unsub()

	select {
	case e := <-ch:
		assert.Equal(t, EventStatus, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected replayed event")
	}
}

func TestSnapshotCoalescesIntoOneBurst(t *testing.T) {
	users, sessions, bus := newHarness()
	owner := newApp(t, "alice", users, sessions, bus)
	ch, unsub := owner.Subscribe()
	defer unsub()

	require.NoError(t, owner.CreateSession())
	owner.RefreshUI()
	owner.RefreshUI()

	seen := 0
	timeout := time.After(500 * time.Millisecond)
loop:
	for {
		select {
		case <-ch:
			seen++
		case <-timeout:
			break loop
		}
	}
	assert.Greater(t, seen, 0)
}
