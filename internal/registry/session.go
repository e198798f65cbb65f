package registry

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/txwerewolves/wwserver/internal/game"
)

// ErrSessionIDExhausted is returned when 20 consecutive id collisions
// occur while creating a new session (spec.md §4.1).
var ErrSessionIDExhausted = errors.New("session id space exhausted")

const chatRingSize = 50

// sessionIDColors is the adjective pool used to build human-readable
// session tags, e.g. "green-472".
var sessionIDColors = []string{
	"red", "green", "blue", "yellow", "orange", "purple", "teal", "amber",
	"violet", "indigo", "crimson", "coral", "olive", "maroon", "navy",
	"silver", "gold", "bronze", "jade", "ruby",
}

// SessionEntry is one active game session (spec.md §3).
type SessionEntry struct {
	mu sync.Mutex

	sessionID string
	owner     string
	members   map[string]bool

	game     *game.Game
	chat     *ChatRing
	settings game.Settings

	// invited tracks outstanding invitations so the signal bus can reach
	// invited-but-not-yet-accepted users (spec.md §4.6 include_invited).
	invited map[string]bool
}

// ID returns the immutable session id.
func (s *SessionEntry) ID() string {
	return s.sessionID
}

// Owner returns the user id of the session's creator.
func (s *SessionEntry) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Members returns a sorted snapshot of accepted member ids.
func (s *SessionEntry) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MemberCount returns len(Members()) without allocating a slice.
func (s *SessionEntry) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// IsMember reports whether id has accepted into the session.
func (s *SessionEntry) IsMember(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[id]
}

// AddMember adds id to the session and clears any pending invitation for
// them.
func (s *SessionEntry) AddMember(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = true
	delete(s.invited, id)
}

// RemoveMember removes id from the session. Returns true if the session
// is now empty and should be destroyed (spec.md §3 invariant).
func (s *SessionEntry) RemoveMember(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
	return len(s.members) == 0
}

// Invite marks id as invited (not yet a member).
func (s *SessionEntry) Invite(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invited[id] = true
}

// RevokeInvite clears a pending invitation without adding the user.
func (s *SessionEntry) RevokeInvite(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invited, id)
}

// InvitedUsers returns a sorted snapshot of pending invitees.
func (s *SessionEntry) InvitedUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.invited))
	for m := range s.invited {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Chat returns the session's chat ring.
func (s *SessionEntry) Chat() *ChatRing {
	return s.chat
}

// Settings returns a copy of the current pending settings.
func (s *SessionEntry) Settings() game.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the pending settings after validating them.
func (s *SessionEntry) SetSettings(settings game.Settings) {
	settings.Validate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Game returns the active game machine, or nil before the session has
// started.
func (s *SessionEntry) Game() *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// StartGame deals a fresh Game for the current member set and settings.
func (s *SessionEntry) StartGame() *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]string, 0, len(s.members))
	for m := range s.members {
		members = append(members, m)
	}
	g := game.New(members)
	_ = g.DealCards(s.settings.WerewolfCount, s.settings.OptionalRoles)
	s.game = g
	return g
}

// ResetGame clears the current game so SessionAdmin's CTRL-R can deal a
// fresh one under new settings.
func (s *SessionEntry) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = nil
}

// SessionRegistry is the process-wide table of sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*SessionEntry
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*SessionEntry)}
}

// Create allocates a new session owned by owner, retrying up to 20 times
// on id collision before giving up (spec.md §4.1).
func (r *SessionRegistry) Create(owner string) (*SessionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < 20; attempt++ {
		id := fmt.Sprintf("%s-%d", sessionIDColors[rand.IntN(len(sessionIDColors))], rand.IntN(1000))
		if _, exists := r.sessions[id]; exists {
			continue
		}
		s := &SessionEntry{
			sessionID: id,
			owner:     owner,
			members:   map[string]bool{owner: true},
			invited:   make(map[string]bool),
			chat:      NewChatRing(chatRingSize),
			settings:  game.DefaultSettings(),
		}
		r.sessions[id] = s
		return s, nil
	}
	return nil, ErrSessionIDExhausted
}

// Get returns the entry for id, or nil.
func (r *SessionRegistry) Get(id string) *SessionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Destroy removes the entry for id.
func (r *SessionRegistry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
