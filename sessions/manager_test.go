package sessions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/forumgate/forumgate/sessions"
	fakesessionrepo "github.com/forumgate/forumgate/sessions/repofakes"
	"github.com/forumgate/forumgate/users"
	fakeuserrepo "github.com/forumgate/forumgate/users/repofake"
	"github.com/stretchr/testify/require"
)

type managerFixture struct {
	sessionRepo *fakesessionrepo.FakeSessionRepo
	userRepo    *fakeuserrepo.FakeUserRepo
	manager     *sessions.Manager
	now         time.Time
	nowLock     sync.Mutex
}

func (f *managerFixture) setNow(now time.Time) {
	f.nowLock.Lock()
	defer f.nowLock.Unlock()
	f.now = now
}

func (f *managerFixture) advance(d time.Duration) {
	f.nowLock.Lock()
	defer f.nowLock.Unlock()
	f.now = f.now.Add(d)
}

func setupManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	f := &managerFixture{
		sessionRepo: fakesessionrepo.NewFakeSessionRepo(),
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	manager, err := sessions.NewManager(f.sessionRepo, f.userRepo, sessions.WithNowTime(func() time.Time {
		f.nowLock.Lock()
		defer f.nowLock.Unlock()
		return f.now
	}))
	require.NoError(t, err)
	f.manager = manager
	return f
}

func (f *managerFixture) createUser(t *testing.T) *users.User {
	t.Helper()

	user := &users.User{Username: "alice", Email: "alice@example.com", Role: users.RoleUser}
	require.NoError(t, f.userRepo.Insert(context.Background(), user))
	return user
}

func TestCreateAndValidateRoundTrip(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, f.now.Add(sessions.DefaultLifetime), session.ExpiresAt)

	got, gotUser, fresh, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, gotUser.ID)
	require.False(t, fresh, "a just-issued session has its full lifetime remaining")
	require.False(t, got.ExpiredAt(f.now))
}

func TestSessionIDsAreUnique(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
		require.NoError(t, err)
		require.False(t, seen[session.ID])
		seen[session.ID] = true
	}
}

func TestValidateUnknownID(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	for _, id := range []string{"", "no-such-session", "!!!not-even-base64!!!"} {
		session, user, fresh, err := f.manager.Validate(ctx, id)
		require.NoError(t, err)
		require.Nil(t, session)
		require.Nil(t, user)
		require.False(t, fresh)
	}
}

func TestValidateExpiredDeletesRow(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	f.advance(sessions.DefaultLifetime + time.Minute)

	got, gotUser, fresh, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Nil(t, gotUser)
	require.False(t, fresh)
	require.Equal(t, 0, f.sessionRepo.Count(), "lazy expiry removes the row")
}

func TestValidateExactlyAtExpiry(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	// expires_at <= now is invalid, not merely past it
	f.advance(sessions.DefaultLifetime)

	got, _, _, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSlidingRenewal(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)
	originalExpiry := session.ExpiresAt

	// 10% elapsed: well above half the lifetime remains, no mutation
	f.advance(sessions.DefaultLifetime / 10)
	got, _, fresh, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.False(t, fresh)
	require.Equal(t, originalExpiry, got.ExpiresAt)

	// 60% elapsed: less than half remains, expiry extends and the caller is
	// told to re-issue the cookie
	f.setNow(originalExpiry.Add(-sessions.DefaultLifetime * 4 / 10))
	got, _, fresh, err = f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, f.now.Add(sessions.DefaultLifetime), got.ExpiresAt)

	stored, err := f.sessionRepo.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, got.ExpiresAt, stored.ExpiresAt)
}

func TestRenewalUsesSessionLifetime(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.ExtendedLifetime)
	require.NoError(t, err)

	// 60% of the extended window elapsed
	f.advance(sessions.ExtendedLifetime * 6 / 10)
	got, _, fresh, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, f.now.Add(sessions.ExtendedLifetime), got.ExpiresAt)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	require.NoError(t, f.manager.Invalidate(ctx, session.ID))
	require.NoError(t, f.manager.Invalidate(ctx, session.ID))

	got, _, _, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInvalidateAllForUser(t *testing.T) {
	f := setupManagerFixture(t)
	alice := f.createUser(t)
	ctx := context.Background()

	bob := &users.User{Username: "bob", Email: "bob@example.com", Role: users.RoleUser}
	require.NoError(t, f.userRepo.Insert(ctx, bob))

	s1, err := f.manager.Create(ctx, alice.ID, sessions.DefaultLifetime)
	require.NoError(t, err)
	s2, err := f.manager.Create(ctx, alice.ID, sessions.ExtendedLifetime)
	require.NoError(t, err)
	s3, err := f.manager.Create(ctx, bob.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	require.NoError(t, f.manager.InvalidateAllForUser(ctx, alice.ID))

	for _, id := range []string{s1.ID, s2.ID} {
		got, _, _, err := f.manager.Validate(ctx, id)
		require.NoError(t, err)
		require.Nil(t, got)
	}

	got, _, _, err := f.manager.Validate(ctx, s3.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "other users' sessions survive")
}

func TestDeletedUserNeverValidates(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	require.NoError(t, f.userRepo.Delete(ctx, user.ID))

	got, gotUser, _, err := f.manager.Validate(ctx, session.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Nil(t, gotUser)
	require.Equal(t, 0, f.sessionRepo.Count())
}

func TestConcurrentValidationKeepsExpiryMonotonic(t *testing.T) {
	f := setupManagerFixture(t)
	user := f.createUser(t)
	ctx := context.Background()

	session, err := f.manager.Create(ctx, user.ID, sessions.DefaultLifetime)
	require.NoError(t, err)

	// Park the clock in the renewal window so every validation extends.
	f.advance(sessions.DefaultLifetime * 6 / 10)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, _, err := f.manager.Validate(ctx, session.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
		}()
	}
	wg.Wait()

	stored, err := f.sessionRepo.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, f.now.Add(sessions.DefaultLifetime), stored.ExpiresAt,
		"every racer extends from the same now; last writer wins")
}
