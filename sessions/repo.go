package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session row matches the id.
var ErrNotFound = errors.New("session not found")

// Repo defines the persistence interface for session records.
type Repo interface {
	// Insert stores a new session row.
	Insert(ctx context.Context, session *Session) error

	// Get retrieves a session by id. Expiry is not checked here; the
	// Manager owns the wall-clock decision.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAllForUser removes every session owned by a user.
	DeleteAllForUser(ctx context.Context, userID string) error

	// UpdateExpiry overwrites a session's expiry. It is a blind write:
	// concurrent extenders may race and the last writer wins, which is
	// acceptable because every writer extends from its own "now".
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
}
