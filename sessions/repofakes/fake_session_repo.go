package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/forumgate/forumgate/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo for tests.
type FakeSessionRepo struct {
	lock     sync.RWMutex
	sessions map[string]*sessions.Session
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Insert(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.sessions[session.ID] = copySession(session)
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, id string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return copySession(session), nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, id string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.sessions, id)
	return nil
}

func (sr *FakeSessionRepo) DeleteAllForUser(_ context.Context, userID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	for id, session := range sr.sessions {
		if session.UserID == userID {
			delete(sr.sessions, id)
		}
	}
	return nil
}

func (sr *FakeSessionRepo) UpdateExpiry(_ context.Context, id string, expiresAt time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil
	}
	session.ExpiresAt = expiresAt
	return nil
}

// Count returns the number of stored sessions, for test assertions.
func (sr *FakeSessionRepo) Count() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	return len(sr.sessions)
}

func copySession(s *sessions.Session) *sessions.Session {
	c := *s
	return &c
}
