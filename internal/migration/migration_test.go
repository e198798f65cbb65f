package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/avatar"
)

type fakeApp struct {
	userID     string
	kind       avatar.Kind
	peer       *fakeApp
	refreshed  int
	shutdowns  int
}

func (f *fakeApp) UserID() string { return f.userID }
func (f *fakeApp) Kind() avatar.Kind { return f.kind }
func (f *fakeApp) RefreshUI()        { f.refreshed++ }
func (f *fakeApp) Shutdown()         { f.shutdowns++ }
func (f *fakeApp) ProduceCompatible(target avatar.Kind) (avatar.Application, error) {
	if f.kind == target {
		return f, nil
	}
	if f.peer == nil {
		f.peer = &fakeApp{userID: f.userID, kind: target, peer: f}
	}
	return f.peer, nil
}

func TestReattachReturnsSelf(t *testing.T) {
	app := &fakeApp{userID: "alice", kind: avatar.TerminalKind}
	result, err := ProduceCompatibleApplication(app, avatar.TerminalKind)
	require.NoError(t, err)
	assert.Same(t, app, result)
	assert.Zero(t, app.refreshed)
}

func TestMigrationProducesPeerAndRefreshes(t *testing.T) {
	app := &fakeApp{userID: "alice", kind: avatar.TerminalKind}
	result, err := ProduceCompatibleApplication(app, avatar.WebKind)
	require.NoError(t, err)
	require.NotSame(t, app, result)
	assert.Equal(t, avatar.WebKind, result.Kind())
	assert.Equal(t, "alice", result.UserID())
	assert.Equal(t, 1, result.(*fakeApp).refreshed)
}

func TestMigrationIsStableAcrossRoundTrip(t *testing.T) {
	app := &fakeApp{userID: "alice", kind: avatar.TerminalKind}
	web, err := ProduceCompatibleApplication(app, avatar.WebKind)
	require.NoError(t, err)

	back, err := ProduceCompatibleApplication(web, avatar.TerminalKind)
	require.NoError(t, err)
	assert.Same(t, app, back)
}
