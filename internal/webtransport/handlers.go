package webtransport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/migration"
	"github.com/txwerewolves/wwserver/internal/webapp"
)

// attachApp ensures userID has a live webapp.App bound in the registry,
// creating one on first login, reusing one already bound, or migrating
// it from a terminal application (spec.md §4.7).
func (s *Server) attachApp(userID string) (*webapp.App, error) {
	u := s.users.Register(userID)

	if existing := u.App(); existing != nil {
		if wa, ok := existing.(*webapp.App); ok {
			return wa, nil
		}
		if aa, ok := existing.(avatar.Application); ok {
			compat, err := migration.ProduceCompatibleApplication(aa, avatar.WebKind)
			if err != nil {
				return nil, err
			}
			wa, ok := compat.(*webapp.App)
			if !ok {
				return nil, fmt.Errorf("migration produced no web application for %s", userID)
			}
			u.SetApp(wa)
			return wa, nil
		}
	}

	wa := webapp.New(userID, s.users, s.sessions, s.bus)
	u.SetApp(wa)
	return wa, nil
}

// userFromRequest resolves the session cookie to a user id.
func (s *Server) userFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return s.cookies.lookup(cookie.Value)
}

// requireSession wraps a handler that needs an authenticated user,
// rejecting the request with 401 otherwise (spec.md §7: authentication
// failures drop the connection with a standard unauthorized response).
func (s *Server) requireSession(next func(userID string, w http.ResponseWriter, r *http.Request, p httprouter.Params)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		userID, ok := s.userFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(userID, w, r, p)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/lobby", http.StatusFound)
}

// handleLogin is a name-only form POST (spec.md §6): it never rejects an
// unrecognized name, it mints one. The SSH transport is the one with
// real authentication (public-key); the web login is the "avatar id"
// entry point spec.md describes.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	userID := r.FormValue("name")
	if userID == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	if _, err := s.attachApp(userID); err != nil {
		http.Error(w, "could not start session", http.StatusInternalServerError)
		return
	}

	token := s.cookies.create(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/lobby", http.StatusFound)
}

// handleLogout destroys the session and emits a shutdown, per spec.md §6.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		if userID, ok := s.cookies.lookup(cookie.Value); ok {
			if u := s.users.Get(userID); u != nil {
				if sid := u.JoinedID(); sid != "" {
					s.bus.Shutdown(sid, userID)
				}
				if app, ok := u.App().(avatar.Application); ok {
					app.Shutdown()
				}
			}
			s.cookies.destroy(cookie.Value)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/lobby", http.StatusFound)
}

// actionRequest is the POST /action body. A real action id wired to no
// parameter (e.g. create-session) simply ignores the extra fields —
// spec.md §7 calls an action id with no handler a silently-ignored
// client protocol misuse, not an error.
type actionRequest struct {
	ID     string `json:"id"`
	Target string `json:"target"`
	First  string `json:"first"`
	Second string `json:"second"`
	Pos1   int    `json:"pos1"`
	Pos2   int    `json:"pos2"`
}

func (s *Server) handleAction(userID string, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	app, err := s.appFor(userID)
	if err != nil || app == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}

	switch req.ID {
	case "create-session":
		err = app.CreateSession()
	case "invite":
		err = app.Invite(req.Target)
	case "revoke-invite":
		app.RevokeInvite(req.Target)
	case "accept":
		err = app.Accept()
	case "reject":
		err = app.Reject()
	case "cancel":
		err = app.Cancel()
	case "start-session":
		err = app.StartSession()
	case "signal-advance":
		err = app.SignalAdvance()
	case "vote":
		err = app.Vote(req.Target)
	case "seer-view-player":
		err = app.SeerViewPlayer(req.Target)
	case "seer-view-table":
		err = app.SeerViewTable(req.Pos1, req.Pos2)
	case "robber-swap":
		err = app.RobberSwap(req.Target)
	case "troublemaker-pick":
		if req.Second == "" {
			err = app.TroublemakerPickFirst(req.First)
		} else {
			err = app.TroublemakerPickSecond(req.Second)
		}
	default:
		// Unknown action id: silently ignored (spec.md §7).
	}
	if err != nil {
		// Invalid state-machine transition: logged-and-ignored in
		// production, per spec.md §7.
		slog.Warn("action rejected", "user", userID, "action", req.ID, "err", err)
		w.WriteHeader(http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(userID string, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	app, err := s.appFor(userID)
	if err != nil || app == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}
	app.SendChat(r.FormValue("message"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(userID string, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var settings settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	app, err := s.appFor(userID)
	if err != nil || app == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}
	app.CommitSettings(settings.toGameSettings())
	w.WriteHeader(http.StatusNoContent)
}

// handleSubscribe holds a text/event-stream response open (spec.md §6):
// it installs a webAvatar for the lifetime of the connection and streams
// every event the bound App emits, starting with the replay buffer.
func (s *Server) handleSubscribe(userID string, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	app, err := s.appFor(userID)
	if err != nil || app == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	av := newWebAvatar(userID)
	if u := s.users.Get(userID); u != nil {
		u.SetAvatar(av)
	}

	events, unsubscribe := app.Subscribe()
	defer unsubscribe()

	app.RefreshUI()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, e); err != nil {
				return
			}
			flusher.Flush()
		case <-av.closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// handlePush triggers app.RefreshUI(), re-emitting the full snapshot;
// the spec.md §6 per-kind push endpoints (actions, phase-info, ...) all
// resolve to the same coalesced snapshot since webapp emits its view
// atomically rather than piecemeal.
func (s *Server) handlePush(userID string, w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	app, err := s.appFor(userID)
	if err != nil || app == nil {
		http.Error(w, "no application", http.StatusInternalServerError)
		return
	}
	app.RefreshUI()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) appFor(userID string) (*webapp.App, error) {
	u := s.users.Get(userID)
	if u == nil {
		return nil, nil
	}
	wa, _ := u.App().(*webapp.App)
	return wa, nil
}

func (s *Server) serveAsset(name, contentType string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}
