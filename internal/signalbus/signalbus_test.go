package signalbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/registry"
)

type recordingApp struct {
	id      string
	signals []Signal
}

func (a *recordingApp) UserID() string { return a.id }
func (a *recordingApp) ReceiveSignal(s Signal) {
	a.signals = append(a.signals, s)
}

func setup(t *testing.T, members ...string) (*registry.UserRegistry, *registry.SessionRegistry, *registry.SessionEntry, map[string]*recordingApp) {
	t.Helper()
	users := registry.NewUserRegistry()
	sessions := registry.NewSessionRegistry()

	apps := make(map[string]*recordingApp)
	for _, id := range members {
		u := users.Register(id)
		app := &recordingApp{id: id}
		apps[id] = app
		u.SetApp(app)
	}

	s, err := sessions.Create(members[0])
	require.NoError(t, err)
	for _, id := range members[1:] {
		s.AddMember(id)
	}
	return users, sessions, s, apps
}

func TestSendReachesAllMembers(t *testing.T) {
	users, sessions, s, apps := setup(t, "alice", "bob", "charlie")
	bus := New(sessions, users)

	bus.Send(s.ID(), Signal{Kind: NextPhase}, Options{})

	for _, app := range apps {
		assert.Len(t, app.signals, 1)
		assert.Equal(t, NextPhase, app.signals[0].Kind)
	}
}

func TestSendExcludesSender(t *testing.T) {
	users, sessions, s, apps := setup(t, "alice", "bob")
	bus := New(sessions, users)

	bus.Send(s.ID(), Signal{Kind: ChatMessage}, Options{Exclude: map[string]bool{"alice": true}})

	assert.Empty(t, apps["alice"].signals)
	assert.Len(t, apps["bob"].signals, 1)
}

func TestSendUnknownSessionIsNoop(t *testing.T) {
	users, sessions, _, _ := setup(t, "alice")
	bus := New(sessions, users)
	assert.NotPanics(t, func() {
		bus.Send("nonexistent-1", Signal{Kind: NextPhase}, Options{})
	})
}

func TestShutdownNotifiesOthersAndDestroysSession(t *testing.T) {
	users, sessions, s, apps := setup(t, "alice", "bob", "charlie")
	bus := New(sessions, users)

	bus.Shutdown(s.ID(), "alice")

	assert.Empty(t, apps["alice"].signals)
	require.Len(t, apps["bob"].signals, 1)
	assert.Equal(t, Shutdown, apps["bob"].signals[0].Kind)
	payload := apps["bob"].signals[0].Payload.(ShutdownPayload)
	assert.Equal(t, "alice", payload.Initiator)

	assert.Nil(t, sessions.Get(s.ID()))
	assert.Empty(t, users.Get("bob").JoinedID())
}
