// Package sessions implements server-side authentication sessions: issuance,
// validation with sliding renewal, invalidation, and the session cookie.
//
// A session id is a bearer credential. Whoever presents it is the user, so
// ids come from crypto/rand and are never derived from anything guessable.
package sessions

import (
	"time"
)

const (
	// DefaultLifetime is the idle lifetime of a plain login session.
	DefaultLifetime = 24 * time.Hour
	// ExtendedLifetime is the "remember me" lifetime.
	ExtendedLifetime = 30 * 24 * time.Hour
)

// Session is the persisted proof that a user has authenticated.
type Session struct {
	ID        string        `json:"id"`      // Opaque bearer token, primary key
	UserID    string        `json:"user_id"` // Owning user, cascade deleted with the user
	ExpiresAt time.Time     `json:"expires_at"`
	Lifetime  time.Duration `json:"-"` // Window granted at creation, drives renewal
}

// ExpiredAt reports whether the session is logically invalid at now. A row
// still present in the store can be expired; validity is wall-clock time,
// never mere existence.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// RenewableAt reports whether a validation at now should extend the session.
// The window slides once less than half the lifetime remains, so active
// users are not logged out mid-use.
func (s *Session) RenewableAt(now time.Time) bool {
	return s.ExpiresAt.Sub(now) < s.Lifetime/2
}
