package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPathToSessionStarted(t *testing.T) {
	var seen []State
	m := New(func(s State) { seen = append(seen, s) })

	require.NoError(t, m.Fire(Initialize))
	require.NoError(t, m.Fire(CreateSession))
	require.NoError(t, m.Fire(SendInvitation))
	require.NoError(t, m.Fire(StartSession))

	assert.Equal(t, SessionStarted, m.State())
	assert.Equal(t, []State{Unjoined, WaitingForAccepts, WaitingForAccepts, SessionStarted}, seen)
}

func TestInvitedAcceptPath(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Fire(Initialize))
	require.NoError(t, m.Fire(ReceiveInvitation))
	require.NoError(t, m.Fire(Accept))
	require.NoError(t, m.Fire(StartSession))
	assert.Equal(t, SessionStarted, m.State())
}

func TestInvalidTransitionIsRejected(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Fire(Initialize))
	err := m.Fire(Accept)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Unjoined, m.State())
}

func TestSerializeRestoreRoundTrip(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Fire(Initialize))
	require.NoError(t, m.Fire(CreateSession))

	token := m.Serialize()

	var replayed State
	restored := Restore(token, func(s State) { replayed = s })

	assert.Equal(t, m.State(), restored.State())
	assert.Equal(t, WaitingForAccepts, replayed)
}

func TestCancelFromAcceptedReturnsToUnjoined(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Fire(Initialize))
	require.NoError(t, m.Fire(ReceiveInvitation))
	require.NoError(t, m.Fire(Accept))
	require.NoError(t, m.Fire(Cancel))
	assert.Equal(t, Unjoined, m.State())
}

func TestForceUnjoinedFromSessionStarted(t *testing.T) {
	var seen []State
	m := New(func(s State) { seen = append(seen, s) })
	require.NoError(t, m.Fire(Initialize))
	require.NoError(t, m.Fire(CreateSession))
	require.NoError(t, m.Fire(StartSession))
	require.Equal(t, SessionStarted, m.State())

	// SessionStarted has no Cancel entry; Fire must still reject it.
	assert.ErrorIs(t, m.Fire(Cancel), ErrInvalidTransition)

	m.ForceUnjoined()
	assert.Equal(t, Unjoined, m.State())
	assert.Equal(t, Unjoined, seen[len(seen)-1])
}
