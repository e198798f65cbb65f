package webtransport

import (
	"github.com/txwerewolves/wwserver/internal/avatar"
)

// webAvatar is the per-/subscribe-connection handle. Its only job is to
// let internal/registry tell a superseded SSE connection it has been
// replaced (spec.md §3): the actual byte-pushing happens in the
// goroutine started by handleSubscribe, which exits once closed signals
// the request is done.
type webAvatar struct {
	userID string
	closed chan struct{}
}

func newWebAvatar(userID string) *webAvatar {
	return &webAvatar{userID: userID, closed: make(chan struct{})}
}

// UserID implements avatar.Avatar.
func (w *webAvatar) UserID() string { return w.userID }

// Kind implements avatar.Avatar.
func (w *webAvatar) Kind() avatar.Kind { return avatar.WebKind }

// Replaced implements avatar.Avatar: a newer tab's /subscribe took over
// this user's avatar slot; unblock the old connection's write loop so it
// closes the response and frees the goroutine.
func (w *webAvatar) Replaced() {
	w.closeOnce()
}

// Disconnect implements avatar.Avatar: the browser dropped the
// connection (tab closed, network loss).
func (w *webAvatar) Disconnect() {
	w.closeOnce()
}

func (w *webAvatar) closeOnce() {
	select {
	case <-w.closed:
	default:
		close(w.closed)
	}
}
