package server

import (
	"context"
	"net/http"

	"github.com/forumgate/forumgate/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated user's public projection
const ContextKeyUser ContextKey = "user"

// RequireSession validates the session cookie and injects the authenticated
// user into the request context. A fresh validation re-issues the cookie; an
// invalid one clears it. Data mutations sit behind this middleware so no
// write is ever attempted without an established principal.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			introspection, cookie, err := s.auth.Session(r.Context(), sessionIDFromRequest(r))
			if err != nil {
				writeAuthError(w, err)
				return
			}
			if cookie != nil {
				http.SetCookie(w, cookie)
			}

			if introspection.User == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, *introspection.User)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole gates a route to users holding the given role. Chain after
// RequireSession.
func (s *Server) RequireRole(role users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next(w, r)
		}
	}
}

// UserFromContext returns the authenticated user injected by RequireSession.
func UserFromContext(ctx context.Context) (users.Public, bool) {
	user, ok := ctx.Value(ContextKeyUser).(users.Public)
	return user, ok
}
