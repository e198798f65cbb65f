package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegisterIsIdempotent(t *testing.T) {
	r := NewUserRegistry()
	a := r.Register("alice")
	b := r.Register("alice")
	assert.Same(t, a, b)
}

func TestUserInvitedAndJoinedAreMutuallyExclusive(t *testing.T) {
	r := NewUserRegistry()
	u := r.Register("alice")

	u.SetInvited("green-1")
	assert.Equal(t, "green-1", u.InvitedID())
	assert.Empty(t, u.JoinedID())

	u.SetJoined("green-1")
	assert.Empty(t, u.InvitedID())
	assert.Equal(t, "green-1", u.JoinedID())
}

func TestListUsersIsSortedAndSnapshot(t *testing.T) {
	r := NewUserRegistry()
	r.Register("charlie")
	r.Register("alice")
	r.Register("bob")

	ids := func(entries []*UserEntry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.UserID()
		}
		return out
	}
	assert.Equal(t, []string{"alice", "bob", "charlie"}, ids(r.ListUsers()))
}

type fakeAvatar struct{ replaced bool }

func (f *fakeAvatar) Replaced() { f.replaced = true }

func TestSetAvatarNotifiesPrior(t *testing.T) {
	r := NewUserRegistry()
	u := r.Register("alice")

	first := &fakeAvatar{}
	u.SetAvatar(first)
	assert.False(t, first.replaced)

	second := &fakeAvatar{}
	u.SetAvatar(second)
	assert.True(t, first.replaced)
	assert.Same(t, second, u.Avatar())
}

func TestSessionCreateOwnerIsMember(t *testing.T) {
	r := NewSessionRegistry()
	s, err := r.Create("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Owner())
	assert.True(t, s.IsMember("alice"))
	assert.Len(t, s.Members(), 1)
	assert.NotEmpty(t, s.ID())
}

func TestSessionDestroyedWhenEmpty(t *testing.T) {
	r := NewSessionRegistry()
	s, err := r.Create("alice")
	require.NoError(t, err)

	empty := s.RemoveMember("alice")
	assert.True(t, empty)
	if empty {
		r.Destroy(s.ID())
	}
	assert.Nil(t, r.Get(s.ID()))
}

func TestChatRingEvictsOldest(t *testing.T) {
	ring := NewChatRing(50)
	for i := 0; i < 51; i++ {
		ring.Append("alice", fmt.Sprintf("msg-%d", i))
	}
	lines := ring.Lines()
	assert.Len(t, lines, 50)
	assert.Equal(t, "msg-1", lines[0].Text)
	assert.Equal(t, "msg-50", lines[49].Text)
}

func TestSessionIDExhaustedAfter20Collisions(t *testing.T) {
	r := NewSessionRegistry()
	for _, c := range sessionIDColors {
		for n := 0; n < 1000; n++ {
			id := fmt.Sprintf("%s-%d", c, n)
			r.sessions[id] = &SessionEntry{sessionID: id}
		}
	}
	_, err := r.Create("alice")
	assert.ErrorIs(t, err, ErrSessionIDExhausted)
}
