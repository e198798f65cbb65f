// Package registry implements the process-wide UserRegistry and
// SessionRegistry described in spec.md §4.1: canonical lookup tables,
// keyed by string id, safe for concurrent access.
//
// Rather than the single-threaded cooperative reactor spec.md models,
// this implementation follows the teacher's convention (model.Party,
// gameserver.ClientManager, login.SessionManager) of one mutex per
// entry plus one mutex guarding the top-level table — Go is preemptively
// scheduled, so that's the substitution spec.md §9 calls for.
package registry

import (
	"sort"
	"sync"
)

// Avatar is the minimal surface registry needs from a connection handle:
// enough to notify it that it has been replaced. The concrete Avatar
// interface (terminal vs web, input funneling) lives in internal/avatar
// to avoid a dependency cycle.
type Avatar interface {
	Replaced()
}

// Application is the minimal surface registry needs from a user's state
// driver. The concrete lobby/game adapters live in internal/lobby,
// internal/termapp and internal/webapp.
type Application interface {
	UserID() string
}

// UserEntry is one record in the UserRegistry (spec.md §3).
type UserEntry struct {
	mu sync.Mutex

	userID string

	avatar Avatar
	app    Application

	invitedID string
	joinedID  string
}

// UserID returns the immutable user id.
func (u *UserEntry) UserID() string {
	return u.userID
}

// Avatar returns the currently bound avatar, or nil.
func (u *UserEntry) Avatar() Avatar {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.avatar
}

// SetAvatar installs a new avatar, shutting down and notifying any prior
// one (spec.md §3 Avatar lifecycle: "replaces any prior avatar for the
// same user; prior is shut down, sending it a replaced notification").
func (u *UserEntry) SetAvatar(a Avatar) {
	u.mu.Lock()
	prior := u.avatar
	u.avatar = a
	u.mu.Unlock()

	if prior != nil && prior != a {
		prior.Replaced()
	}
}

// ClearAvatar removes the bound avatar (on disconnect or logoff).
func (u *UserEntry) ClearAvatar() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.avatar = nil
}

// App returns the bound application, or nil.
func (u *UserEntry) App() Application {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.app
}

// SetApp installs the user's application driver.
func (u *UserEntry) SetApp(app Application) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.app = app
}

// InvitedID returns the session id of an outstanding invitation, or "".
func (u *UserEntry) InvitedID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.invitedID
}

// JoinedID returns the session id this user has joined, or "".
func (u *UserEntry) JoinedID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.joinedID
}

// SetInvited records an outstanding invitation, clearing JoinedID — the
// two are never both set (spec.md §3 invariant).
func (u *UserEntry) SetInvited(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.invitedID = sessionID
	u.joinedID = ""
}

// SetJoined records session membership, clearing InvitedID.
func (u *UserEntry) SetJoined(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.joinedID = sessionID
	u.invitedID = ""
}

// ClearSession clears both InvitedID and JoinedID.
func (u *UserEntry) ClearSession() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.invitedID = ""
	u.joinedID = ""
}

// UserRegistry is the process-wide table of users.
type UserRegistry struct {
	mu    sync.RWMutex
	users map[string]*UserEntry
}

// NewUserRegistry constructs an empty registry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{users: make(map[string]*UserEntry)}
}

// Register returns the entry for id, creating one if this is the first
// time id has been seen (idempotent, per spec.md §4.1).
func (r *UserRegistry) Register(id string) *UserEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u
	}
	u := &UserEntry{userID: id}
	r.users[id] = u
	return u
}

// Get returns the entry for id, or nil if none exists.
func (r *UserRegistry) Get(id string) *UserEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id]
}

// Remove deletes the entry for id (explicit logoff).
func (r *UserRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// ListUsers returns a snapshot of every registered user, sorted
// alphabetically by id (SPEC_FULL.md §9: the "Available Players" listing
// is sorted, not insertion-ordered).
func (r *UserRegistry) ListUsers() []*UserEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*UserEntry, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].userID < out[j].userID })
	return out
}

// Filter returns a snapshot of users for which pred returns true.
// Iteration is over a snapshot, so it is safe against concurrent
// mutation of the underlying table (spec.md §4.1).
func (r *UserRegistry) Filter(pred func(*UserEntry) bool) []*UserEntry {
	var out []*UserEntry
	for _, u := range r.ListUsers() {
		if pred(u) {
			out = append(out, u)
		}
	}
	return out
}
