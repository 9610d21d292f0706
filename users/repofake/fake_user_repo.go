package fakeuserrepo

import (
	"context"
	"sync"

	"github.com/forumgate/forumgate/users"
	"github.com/google/uuid"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo for tests. It enforces the same
// uniqueness guarantees as the Postgres store.
type FakeUserRepo struct {
	lock    sync.RWMutex
	byID    map[string]*users.User
	idNames map[string]string // username -> user id
	idMails map[string]string // email -> user id
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byID:    make(map[string]*users.User),
		idNames: make(map[string]string),
		idMails: make(map[string]string),
	}
}

func (ur *FakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if id, ok := ur.idNames[identifier]; ok {
		return copyUser(ur.byID[id]), nil
	}
	if id, ok := ur.idMails[identifier]; ok {
		return copyUser(ur.byID[id]), nil
	}
	return nil, users.ErrNotFound
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(user), nil
}

func (ur *FakeUserRepo) Insert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, taken := ur.idNames[user.Username]; taken {
		return users.ErrDuplicate
	}
	if _, taken := ur.idMails[user.Email]; taken {
		return users.ErrDuplicate
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	ur.byID[user.ID] = copyUser(user)
	ur.idNames[user.Username] = user.ID
	ur.idMails[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.byID[id]
	if !ok {
		return nil
	}
	delete(ur.idNames, user.Username)
	delete(ur.idMails, user.Email)
	delete(ur.byID, id)
	return nil
}

func copyUser(u *users.User) *users.User {
	c := *u
	return &c
}
