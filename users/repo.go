package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an insert violates the username or email
	// uniqueness constraint. The store is the arbiter of uniqueness; callers
	// must treat a pre-insert existence check as advisory only.
	ErrDuplicate = errors.New("username or email already taken")
)

type Repo interface {
	// GetByIdentifier looks a user up by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// GetByID looks a user up by id.
	GetByID(ctx context.Context, id string) (*User, error)

	// Insert stores a new user. Returns ErrDuplicate when the username or
	// email is already taken.
	Insert(ctx context.Context, user *User) error

	// Delete removes a user. Sessions referencing the user are cascade
	// deleted by the store.
	Delete(ctx context.Context, id string) error
}
