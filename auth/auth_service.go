// Package auth is the façade the HTTP layer calls for login, registration,
// logout, and session introspection. It owns the policy binding credentials
// to sessions; transport concerns (status codes, cookie headers) stay with
// the caller.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forumgate/forumgate/credentials"
	"github.com/forumgate/forumgate/sessions"
	"github.com/forumgate/forumgate/users"
	"github.com/google/uuid"
)

// Result is the outcome of a successful login or registration.
type Result struct {
	User    users.Public
	Session *sessions.Session
	Cookie  *http.Cookie // Session cookie to attach to the response
}

// SessionInfo is the client-visible slice of a session.
type SessionInfo struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Introspection is the result of session introspection. Both fields are nil
// when no valid session was presented; that is data, not a failure.
type Introspection struct {
	User    *users.Public `json:"user"`
	Session *SessionInfo  `json:"session"`
}

// Service orchestrates the credential hasher, session manager, and cookie
// codec. All state lives in the injected dependencies; construct one per
// process and share it across requests.
type Service struct {
	users      users.Repo
	sessions   *sessions.Manager
	cookies    *sessions.CookieCodec
	hashParams credentials.Params
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithHashParams overrides the argon2id cost parameters (primarily to keep
// tests fast).
func WithHashParams(params credentials.Params) ServiceOption {
	return func(s *Service) {
		s.hashParams = params
	}
}

func NewService(userRepo users.Repo, sessionManager *sessions.Manager, cookies *sessions.CookieCodec, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	if cookies == nil {
		return nil, errors.New("[NewService] cookie codec is required")
	}

	s := &Service{
		users:      userRepo,
		sessions:   sessionManager,
		cookies:    cookies,
		hashParams: credentials.DefaultParams(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login authenticates identifier (username or email) with password and
// issues a session. rememberMe selects the extended session lifetime.
func (s *Service) Login(ctx context.Context, identifier, password string, rememberMe bool) (*Result, error) {
	if identifier == "" || password == "" {
		return nil, &ValidationError{Message: "username/email and password are required"}
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// Burn the same KDF work as a real verification so the lookup
			// miss is not observable from response time.
			credentials.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[Service.Login] GetByIdentifier: %w", err)
	}

	ok, err := credentials.Verify(user.PasswordHash, password)
	if err != nil {
		// Corrupt stored hash. Fatal for this account until re-set; the
		// caller surfaces a generic server error.
		return nil, fmt.Errorf("[Service.Login] verify for user %s: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user, rememberMe)
}

// Register validates the new account fields, stores the user, and issues a
// session exactly as Login does.
func (s *Service) Register(ctx context.Context, username, email, password string, rememberMe bool) (*Result, error) {
	if err := users.ValidateUsername(username); err != nil {
		return nil, validationErr(err)
	}
	if err := users.ValidateEmail(email); err != nil {
		return nil, validationErr(err)
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		return nil, validationErr(err)
	}

	hash, err := s.hashParams.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] hash: %w", err)
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleUser,
	}

	// The store's unique constraint is the arbiter; a concurrent register
	// with the same identifier loses here, not at a pre-check.
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("[Service.Register] Insert: %w", err)
	}

	return s.issueSession(ctx, user, rememberMe)
}

// Logout invalidates the presented session and returns the blank cookie to
// clear it client-side. The blank cookie is returned even when the session
// row was already gone, so a second logout with the same id succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) (*http.Cookie, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("[Service.Logout] invalidate: %w", err)
	}
	return s.cookies.Blank(), nil
}

// Session introspects the presented session id. The returned cookie is nil
// when nothing changed, a renewed session cookie when the validation was
// fresh, and a blank cookie when the id was invalid. An absent or invalid
// session is a normal null result, never an error.
func (s *Service) Session(ctx context.Context, sessionID string) (*Introspection, *http.Cookie, error) {
	if sessionID == "" {
		return &Introspection{}, nil, nil
	}

	session, user, fresh, err := s.sessions.Validate(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("[Service.Session] validate: %w", err)
	}

	if session == nil {
		return &Introspection{}, s.cookies.Blank(), nil
	}

	var cookie *http.Cookie
	if fresh {
		cookie = s.cookies.New(session.ID, session.Lifetime)
	}

	public := user.Public()
	return &Introspection{
		User:    &public,
		Session: &SessionInfo{ID: session.ID, ExpiresAt: session.ExpiresAt},
	}, cookie, nil
}

// RevokeAllSessions cuts off every outstanding session for a user, the
// response to a password change or a suspected account compromise.
func (s *Service) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.sessions.InvalidateAllForUser(ctx, userID)
}

func (s *Service) issueSession(ctx context.Context, user *users.User, rememberMe bool) (*Result, error) {
	lifetime := sessions.DefaultLifetime
	if rememberMe {
		lifetime = sessions.ExtendedLifetime
	}

	session, err := s.sessions.Create(ctx, user.ID, lifetime)
	if err != nil {
		return nil, fmt.Errorf("[Service.issueSession] create: %w", err)
	}

	return &Result{
		User:    user.Public(),
		Session: session,
		Cookie:  s.cookies.New(session.ID, lifetime),
	}, nil
}
