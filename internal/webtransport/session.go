package webtransport

import (
	"sync"

	"github.com/google/uuid"
)

// sessionCookieName is the cookie the browser carries after /login, per
// spec.md §6 ("session cookie binds the browser to a server-side
// session").
const sessionCookieName = "wwsession"

// cookieStore maps an opaque session token to the user id it was issued
// for. Unlike the teacher's login.SessionManager (database-backed), this
// binding is purely process-local: the durable state lives in
// internal/registry, not here.
type cookieStore struct {
	mu    sync.RWMutex
	users map[string]string
}

func newCookieStore() *cookieStore {
	return &cookieStore{users: make(map[string]string)}
}

func (c *cookieStore) create(userID string) string {
	token := uuid.NewString()
	c.mu.Lock()
	c.users[token] = userID
	c.mu.Unlock()
	return token
}

func (c *cookieStore) lookup(token string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	userID, ok := c.users[token]
	return userID, ok
}

func (c *cookieStore) destroy(token string) {
	c.mu.Lock()
	delete(c.users, token)
	c.mu.Unlock()
}
