package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/forumgate/forumgate/users"
)

const sessionIDBytes = 24

// Manager issues, validates, and invalidates sessions. Expiry is checked
// lazily at validation time; no background sweeper is required.
type Manager struct {
	repo     Repo
	userRepo users.Repo
	nowTime  func() time.Time // nowTime function (injectable for testing)
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(repo Repo, userRepo users.Repo, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewManager] user repo is required")
	}

	m := &Manager{
		repo:     repo,
		userRepo: userRepo,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Create issues a new session for userID with the given lifetime and
// persists it. The lifetime choice (default vs extended) belongs to the
// caller.
func (m *Manager) Create(ctx context.Context, userID string, lifetime time.Duration) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: m.nowTime().Add(lifetime),
		Lifetime:  lifetime,
	}
	if err := m.repo.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("[Manager.Create] repo.Insert: %w", err)
	}
	return session, nil
}

// Validate looks a session up and checks it against the wall clock.
//
// An unknown, malformed, or expired id all return (nil, nil, false, nil):
// the outcomes are deliberately indistinguishable so a caller cannot learn
// whether a given id ever existed. Expired rows are deleted on detection.
//
// When the session is valid and less than half its lifetime remains, the
// expiry is extended and fresh=true tells the caller to re-issue the cookie.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, *users.User, bool, error) {
	if id == "" {
		return nil, nil, false, nil
	}

	session, err := m.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("[Manager.Validate] repo.Get: %w", err)
	}

	now := m.nowTime()
	if session.ExpiredAt(now) {
		if err := m.repo.Delete(ctx, id); err != nil {
			return nil, nil, false, fmt.Errorf("[Manager.Validate] delete expired: %w", err)
		}
		return nil, nil, false, nil
	}

	user, err := m.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// The owning user is gone. Cascade delete normally removes the
			// row first, but whatever the store state, the session never
			// validates.
			_ = m.repo.Delete(ctx, id)
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("[Manager.Validate] userRepo.GetByID: %w", err)
	}

	fresh := false
	if session.RenewableAt(now) {
		session.ExpiresAt = now.Add(session.Lifetime)
		if err := m.repo.UpdateExpiry(ctx, session.ID, session.ExpiresAt); err != nil {
			return nil, nil, false, fmt.Errorf("[Manager.Validate] repo.UpdateExpiry: %w", err)
		}
		fresh = true
	}

	return session, user, fresh, nil
}

// Invalidate deletes a session. Invalidating an already-absent session is
// not an error.
func (m *Manager) Invalidate(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("[Manager.Invalidate] repo.Delete: %w", err)
	}
	return nil
}

// InvalidateAllForUser deletes every session owned by userID. This is the
// compromise-response lever: password change or account lockout calls it to
// cut off every outstanding cookie at once.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID string) error {
	if err := m.repo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("[Manager.InvalidateAllForUser] repo.DeleteAllForUser: %w", err)
	}
	return nil
}

func newSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("session id rand.Read: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
