package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const CookieName = "X-Session-Token"

// TTL is how long an operator session stays valid.
const TTL = 12 * time.Hour

func Cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func NewToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Store keeps issued operator session tokens in memory. Sessions do
// not survive a restart; the operator just logs in again.
type Store struct {
	mu     sync.RWMutex
	expiry map[string]time.Time
}

func NewStore() *Store {
	return &Store{expiry: make(map[string]time.Time)}
}

// Issue creates a new session token.
func (s *Store) Issue() string {
	token := NewToken()
	s.mu.Lock()
	s.expiry[token] = time.Now().Add(TTL)
	s.mu.Unlock()
	return token
}

// Valid reports whether token belongs to a live session, pruning it
// when expired.
func (s *Store) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	exp, ok := s.expiry[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		s.Revoke(token)
		return false
	}
	return true
}

// Revoke deletes token from the store.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.expiry, token)
	s.mu.Unlock()
}
