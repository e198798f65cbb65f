// Package webtransport is the browser/SSE transport of spec.md §6: name
// based login, JSON action/chat/settings POSTs, and a single long-lived
// text/event-stream connection per avatar carrying every webapp.Event.
package webtransport

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/txwerewolves/wwserver/internal/config"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

//go:embed assets/*
var assets embed.FS

// readTimeout bounds how long a request's headers/body may take to
// arrive. It intentionally does not bound write time: /subscribe holds
// its response open indefinitely, per spec.md §5 ("the SSE connection is
// held open indefinitely").
const readTimeout = 10 * time.Second

// Server is the HTTP/SSE transport (spec.md §6).
type Server struct {
	cfg      config.WebConfig
	users    *registry.UserRegistry
	sessions *registry.SessionRegistry
	bus      *signalbus.Bus
	cookies  *cookieStore
}

// NewServer builds a Server bound to the shared registries and bus.
func NewServer(cfg config.WebConfig, users *registry.UserRegistry, sessions *registry.SessionRegistry, bus *signalbus.Bus) *Server {
	return &Server{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		bus:      bus,
		cookies:  newCookieStore(),
	}
}

func (s *Server) routes() *httprouter.Router {
	mux := httprouter.New()
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered any) {
		slog.Error("web transport handler panic", "recovered", recovered)
		w.WriteHeader(http.StatusInternalServerError)
	}

	mux.GET("/", s.handleRoot)
	mux.GET("/lobby", s.serveAsset("assets/lobby.html", "text/html; charset=utf-8"))
	mux.GET("/lobby.js", s.serveAsset("assets/lobby.js", "text/javascript; charset=utf-8"))
	mux.GET("/werewolves", s.serveAsset("assets/werewolves.html", "text/html; charset=utf-8"))
	mux.GET("/werewolves.js", s.serveAsset("assets/werewolves.js", "text/javascript; charset=utf-8"))

	mux.POST("/login", s.handleLogin)
	mux.GET("/logout", s.handleLogout)

	mux.POST("/action", s.requireSession(s.handleAction))
	mux.POST("/chat", s.requireSession(s.handleChat))
	mux.POST("/settings", s.requireSession(s.handleSettings))
	mux.GET("/subscribe", s.requireSession(s.handleSubscribe))

	for _, kind := range []string{"actions", "phase-info", "player-info", "game-info", "output", "request-all"} {
		mux.GET("/werewolves/"+kind, s.requireSession(s.handlePush))
	}

	return mux
}

// Run listens on cfg.BindAddr until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.BindAddr,
		Handler:           s.routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web transport listening", "addr", s.cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("web transport: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
