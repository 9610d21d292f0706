package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/forumgate/forumgate/auth"
	"github.com/forumgate/forumgate/credentials"
	"github.com/forumgate/forumgate/sessions"
	fakesessionrepo "github.com/forumgate/forumgate/sessions/repofakes"
	"github.com/forumgate/forumgate/users"
	fakeuserrepo "github.com/forumgate/forumgate/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "alice"
	testEmail    = "alice@example.com"
	testPassword = "Correctpass1"
)

// fastHashParams keeps the KDF cheap for tests.
var fastHashParams = credentials.Params{
	Memory:      64,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// testFixture holds all test dependencies
type testFixture struct {
	userRepo    *fakeuserrepo.FakeUserRepo
	sessionRepo *fakesessionrepo.FakeSessionRepo
	service     *auth.Service
	now         time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		sessionRepo: fakesessionrepo.NewFakeSessionRepo(),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	manager, err := sessions.NewManager(f.sessionRepo, f.userRepo,
		sessions.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)

	service, err := auth.NewService(f.userRepo, manager, sessions.NewCookieCodec(false),
		auth.WithHashParams(fastHashParams))
	require.NoError(t, err)
	f.service = service
	return f
}

// createTestUser stores a user directly, bypassing Register.
func (f *testFixture) createTestUser(t *testing.T, username, email, password string) *users.User {
	t.Helper()

	hash, err := fastHashParams.Hash(password)
	require.NoError(t, err)

	user := &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleUser,
	}
	require.NoError(t, f.userRepo.Insert(context.Background(), user))
	return user
}

func TestRegisterThenIntrospect(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	result, err := f.service.Register(ctx, testUsername, testEmail, testPassword, false)
	require.NoError(t, err)
	require.Equal(t, testUsername, result.User.Username)
	require.Equal(t, users.RoleUser, result.User.Role)
	require.Equal(t, users.DefaultAvatar, result.User.Avatar)
	require.Equal(t, sessions.CookieName, result.Cookie.Name)
	require.Equal(t, result.Session.ID, result.Cookie.Value)

	introspection, cookie, err := f.service.Session(ctx, result.Session.ID)
	require.NoError(t, err)
	require.Nil(t, cookie, "a just-issued session needs no re-issue")
	require.NotNil(t, introspection.User)
	require.Equal(t, result.User.ID, introspection.User.ID)
	require.Equal(t, result.Session.ID, introspection.Session.ID)
}

func TestRegisterValidationMessages(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
		wantMsg  string
	}{
		{"short username", "ab", testEmail, testPassword, "3-20 characters"},
		{"missing username", "", testEmail, testPassword, "username is required"},
		{"bad email", "valid_user1", "not-an-email", testPassword, "email format"},
		{"missing email", "valid_user1", "", testPassword, "email is required"},
		{"short password", "valid_user1", testEmail, "Sh0rt", "at least 8 characters"},
		{"no uppercase", "valid_user1", testEmail, "alllower1", "uppercase"},
		{"no digit", "valid_user1", testEmail, "NoDigitsHere", "number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := f.service.Register(ctx, tc.username, tc.email, tc.password, false)
			require.Nil(t, result)

			var validationErr *auth.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Contains(t, validationErr.Message, tc.wantMsg)
		})
	}

	require.Equal(t, 0, f.sessionRepo.Count(), "no session issued on validation failure")
}

func TestRegisterConflict(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, testPassword)

	_, err := f.service.Register(ctx, testUsername, "other@example.com", testPassword, false)
	require.ErrorIs(t, err, auth.ErrConflict)

	_, err = f.service.Register(ctx, "otheruser", testEmail, testPassword, false)
	require.ErrorIs(t, err, auth.ErrConflict)
}

func TestConcurrentRegisterSingleWinner(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.Register(ctx, testUsername, testEmail, testPassword, false)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, auth.ErrConflict, "losers get a conflict, never a crash")
		}
	}
	require.Equal(t, 1, winners)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	user := f.createTestUser(t, testUsername, testEmail, testPassword)

	for _, identifier := range []string{testUsername, testEmail} {
		result, err := f.service.Login(ctx, identifier, testPassword, false)
		require.NoError(t, err, identifier)
		require.Equal(t, user.ID, result.User.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, "Correctpass1")

	result, err := f.service.Login(ctx, testUsername, "Wrongpass1", false)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Nil(t, result, "no cookie on credential failure")
	require.Equal(t, 0, f.sessionRepo.Count())
}

func TestLoginUnknownAccountIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, testPassword)

	_, wrongPassErr := f.service.Login(ctx, testUsername, "Wrongpass1", false)
	_, noAccountErr := f.service.Login(ctx, "nobody", "Wrongpass1", false)

	require.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)
	require.ErrorIs(t, noAccountErr, auth.ErrInvalidCredentials)
	require.Equal(t, wrongPassErr.Error(), noAccountErr.Error(),
		"the public message must not confirm account existence")
}

func TestLoginMissingFields(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	for _, tc := range [][2]string{{"", testPassword}, {testUsername, ""}, {"", ""}} {
		_, err := f.service.Login(ctx, tc[0], tc[1], false)
		var validationErr *auth.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}
}

func TestLoginCorruptStoredHash(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	user := &users.User{
		Username:     testUsername,
		Email:        testEmail,
		PasswordHash: "not-a-valid-hash",
		Role:         users.RoleUser,
	}
	require.NoError(t, f.userRepo.Insert(ctx, user))

	_, err := f.service.Login(ctx, testUsername, testPassword, false)
	require.ErrorIs(t, err, credentials.ErrCorruptHash)
	require.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestCookieLifetimeSelection(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, testPassword)

	remembered, err := f.service.Login(ctx, testUsername, testPassword, true)
	require.NoError(t, err)
	require.Equal(t, 2592000, remembered.Cookie.MaxAge, "rememberMe grants 30 days")

	plain, err := f.service.Login(ctx, testUsername, testPassword, false)
	require.NoError(t, err)
	require.Equal(t, 86400, plain.Cookie.MaxAge, "default is 24 hours")
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, testPassword)

	result, err := f.service.Login(ctx, testUsername, testPassword, false)
	require.NoError(t, err)

	blank, err := f.service.Logout(ctx, result.Session.ID)
	require.NoError(t, err)
	require.Empty(t, blank.Value)
	require.Negative(t, blank.MaxAge)

	// Second logout with the now-absent session id still succeeds
	blank, err = f.service.Logout(ctx, result.Session.ID)
	require.NoError(t, err)
	require.Empty(t, blank.Value)

	_, err = f.service.Logout(ctx, "")
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestSessionIntrospectionNeverErrors(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	// No cookie presented: null result, no cookie churn
	introspection, cookie, err := f.service.Session(ctx, "")
	require.NoError(t, err)
	require.Nil(t, introspection.User)
	require.Nil(t, introspection.Session)
	require.Nil(t, cookie)

	// Unknown id: null result plus an active clear of the stale cookie
	introspection, cookie, err = f.service.Session(ctx, "no-such-session")
	require.NoError(t, err)
	require.Nil(t, introspection.User)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
}

func TestSessionIntrospectionRenewsFreshSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestUser(t, testUsername, testEmail, testPassword)

	result, err := f.service.Login(ctx, testUsername, testPassword, false)
	require.NoError(t, err)

	f.now = f.now.Add(sessions.DefaultLifetime * 6 / 10)

	introspection, cookie, err := f.service.Session(ctx, result.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, introspection.User)
	require.NotNil(t, cookie, "fresh validation re-issues the cookie")
	require.Equal(t, result.Session.ID, cookie.Value)
	require.Equal(t, 86400, cookie.MaxAge)
	require.True(t, introspection.Session.ExpiresAt.After(result.Session.ExpiresAt))
}

func TestRevokeAllSessions(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	user := f.createTestUser(t, testUsername, testEmail, testPassword)

	first, err := f.service.Login(ctx, testUsername, testPassword, false)
	require.NoError(t, err)
	second, err := f.service.Login(ctx, testEmail, testPassword, true)
	require.NoError(t, err)

	require.NoError(t, f.service.RevokeAllSessions(ctx, user.ID))

	for _, id := range []string{first.Session.ID, second.Session.ID} {
		introspection, _, err := f.service.Session(ctx, id)
		require.NoError(t, err)
		require.Nil(t, introspection.User)
	}
}
