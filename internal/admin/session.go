// internal/admin/session.go
package admin

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// CookieName is the session cookie set after a successful login.
const CookieName = "gymflow_admin"

// Sessions tracks the admin tokens issued by this process. Nothing is
// persisted, so a restart logs everyone out.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]struct{})}
}

// Issue creates and remembers a new token.
func (s *Sessions) Issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
	return token
}

// Valid reports whether token was issued and not revoked.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Revoke forgets token. Unknown tokens are ignored.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// FromRequest returns the session token carried by r, if any.
func FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// sessionCookie has no Expires or MaxAge, so browsers drop it with the session.
func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
