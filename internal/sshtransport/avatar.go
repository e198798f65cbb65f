package sshtransport

import (
	"bufio"
	"log/slog"

	"golang.org/x/crypto/ssh"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/terminal"
	"github.com/txwerewolves/wwserver/internal/termapp"
)

// connAvatar is the per-channel connection handle: it owns the live
// ssh.Channel, reads keystrokes into the bound termapp.App, and
// implements avatar.Avatar so internal/registry can notify it of
// replacement (spec.md §3 Avatar lifecycle).
type connAvatar struct {
	userID  string
	channel ssh.Channel
	surface *terminal.ANSISurface
	app     *termapp.App
}

func newConnAvatar(userID string, channel ssh.Channel, app *termapp.App) *connAvatar {
	surface := terminal.NewANSISurface(channel, channel.Close)
	return &connAvatar{userID: userID, channel: channel, surface: surface, app: app}
}

// UserID implements avatar.Avatar.
func (c *connAvatar) UserID() string { return c.userID }

// Kind implements avatar.Avatar.
func (c *connAvatar) Kind() avatar.Kind { return avatar.TerminalKind }

// Replaced implements avatar.Avatar: a newer connection for the same
// user took over. spec.md §3/§8 requires this connection be told why it
// is being dropped before it is dropped, so it resets and writes a
// notification to its own surface first, then closes the channel.
func (c *connAvatar) Replaced() {
	c.surface.Reset()
	c.surface.Write("Another avatar has logged in. This connection will now close.\r\n")
	c.channel.Close()
}

// Disconnect implements avatar.Avatar: the connection dropped, not
// necessarily a replacement — detach without destroying the App.
func (c *connAvatar) Disconnect() {
	c.app.Detach()
	c.channel.Close()
}

// serve blocks reading keystrokes until the channel closes.
func (c *connAvatar) serve() {
	c.app.Attach(c.surface)
	c.app.RefreshUI()

	r := bufio.NewReader(c.channel)
	for {
		key, mod, err := decodeKey(r)
		if err != nil {
			slog.Debug("ssh channel closed", "user", c.userID, "err", err)
			c.app.Detach()
			return
		}
		c.app.HandleKey(key, mod)
	}
}
