package sshtransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/ssh"
)

// UserDB maps a user id to the set of public keys authorized to log in
// as them (spec.md §6: public-key-only auth). The on-disk format is a
// flat JSON object of user id -> list of authorized_keys-format lines.
type UserDB struct {
	mu   sync.RWMutex
	keys map[string][]ssh.PublicKey
}

// LoadUserDB reads path and parses every listed public key.
func LoadUserDB(path string) (*UserDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading user db %s: %w", path, err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing user db %s: %w", path, err)
	}

	db := &UserDB{keys: make(map[string][]ssh.PublicKey, len(raw))}
	for userID, lines := range raw {
		for _, line := range lines {
			pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
			if err != nil {
				return nil, fmt.Errorf("parsing key for user %s: %w", userID, err)
			}
			db.keys[userID] = append(db.keys[userID], pub)
		}
	}
	return db, nil
}

// Authenticate returns the user id whose key set contains key, or "" if
// none matches.
func (db *UserDB) Authenticate(key ssh.PublicKey) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	marshaled := key.Marshal()
	for userID, keys := range db.keys {
		for _, k := range keys {
			if bytes.Equal(k.Marshal(), marshaled) {
				return userID
			}
		}
	}
	return ""
}
