// Package sshtransport is the SSH terminal transport of spec.md §6: it
// authenticates by public key only, allocates one PTY-backed channel per
// login, and drives a termapp.App through it — reattaching to an
// existing App on reconnect and migrating from the web transport when
// the same user logs in from a different channel kind (spec.md §4.7).
package sshtransport

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/crypto/ssh"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/config"
	"github.com/txwerewolves/wwserver/internal/migration"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
	"github.com/txwerewolves/wwserver/internal/termapp"
)

// extUserID is the ssh.Permissions.Extensions key PublicKeyCallback
// stashes the authenticated user id under.
const extUserID = "user-id"

// Server accepts SSH connections and drives one termapp.App per
// authenticated user.
type Server struct {
	cfg      config.SSHConfig
	signer   ssh.Signer
	userDB   *UserDB
	users    *registry.UserRegistry
	sessions *registry.SessionRegistry
	bus      *signalbus.Bus
}

// NewServer loads the host key and user key db named in cfg and builds a
// Server ready to Run.
func NewServer(cfg config.SSHConfig, users *registry.UserRegistry, sessions *registry.SessionRegistry, bus *signalbus.Bus) (*Server, error) {
	signer, err := LoadHostKey(cfg.HostKeyDir)
	if err != nil {
		return nil, err
	}
	userDB, err := LoadUserDB(cfg.UserDBPath)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, signer: signer, userDB: userDB, users: users, sessions: sessions, bus: bus}, nil
}

func (s *Server) sshConfig() *ssh.ServerConfig {
	sc := &ssh.ServerConfig{
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			userID := s.userDB.Authenticate(key)
			if userID == "" {
				return nil, fmt.Errorf("unrecognized public key for %q", conn.User())
			}
			return &ssh.Permissions{Extensions: map[string]string{extUserID: userID}}, nil
		},
	}
	sc.AddHostKey(s.signer)
	return sc
}

// Run listens on cfg.BindAddr until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.BindAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.BindAddr, err)
	}
	slog.Info("ssh transport listening", "addr", s.cfg.BindAddr)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	sc := s.sshConfig()
	for {
		nConn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accepting connection: %w", err)
			}
		}
		go s.handleConn(nConn, sc)
	}
}

func (s *Server) handleConn(nConn net.Conn, sc *ssh.ServerConfig) {
	sconn, chans, reqs, err := ssh.NewServerConn(nConn, sc)
	if err != nil {
		slog.Debug("ssh handshake failed", "remote", nConn.RemoteAddr(), "err", err)
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	userID := sconn.Permissions.Extensions[extUserID]
	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			slog.Debug("channel accept failed", "user", userID, "err", err)
			continue
		}
		go s.handleChannel(userID, channel, requests)
	}
}

func (s *Server) handleChannel(userID string, channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	for req := range requests {
		switch req.Type {
		case "pty-req", "shell", "window-change":
			if req.WantReply {
				req.Reply(true, nil)
			}
			if req.Type == "shell" {
				s.attachApplication(userID, channel)
				return
			}
		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// attachApplication binds channel to userID's termapp.App, creating one
// on first login, reattaching on reconnect, or migrating from the web
// transport if that's where the user's Application currently lives.
func (s *Server) attachApplication(userID string, channel ssh.Channel) {
	u := s.users.Register(userID)

	var app *termapp.App
	if existing := u.App(); existing != nil {
		if ta, ok := existing.(*termapp.App); ok {
			app = ta
		} else if aa, ok := existing.(avatar.Application); ok {
			compat, err := migration.ProduceCompatibleApplication(aa, avatar.TerminalKind)
			if err != nil {
				slog.Error("migrating application to terminal", "user", userID, "err", err)
				channel.Close()
				return
			}
			app, ok = compat.(*termapp.App)
			if !ok {
				slog.Error("migration did not produce a terminal application", "user", userID)
				channel.Close()
				return
			}
		}
	}
	if app == nil {
		app = termapp.New(userID, nil, s.users, s.sessions, s.bus)
	}
	u.SetApp(app)

	av := newConnAvatar(userID, channel, app)
	u.SetAvatar(av)
	av.serve()
}
