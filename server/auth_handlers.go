package server

import (
	"encoding/json"
	"net/http"

	"github.com/forumgate/forumgate/sessions"
	"github.com/forumgate/forumgate/users"
)

type loginRequest struct {
	Identifier string `json:"identifier"` // username or email
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type registerRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    users.Public `json:"user"`
}

// LoginHandler processes credential logins (POST /api/auth/login)
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := s.auth.Login(r.Context(), req.Identifier, req.Password, req.RememberMe)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		http.SetCookie(w, result.Cookie)
		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Message: "Login successful",
			User:    result.User,
		})
	}
}

// RegisterHandler creates a new account (POST /api/auth/register)
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.RememberMe)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		http.SetCookie(w, result.Cookie)
		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Message: "Registration successful",
			User:    result.User,
		})
	}
}

// LogoutHandler invalidates the presented session (POST /api/auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blank, err := s.auth.Logout(r.Context(), sessionIDFromRequest(r))
		if err != nil {
			writeAuthError(w, err)
			return
		}

		http.SetCookie(w, blank)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// SessionHandler is the introspection endpoint route guards poll
// (GET /api/auth/session). It always answers 200; a missing or invalid
// session is a null result, not a failure.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		introspection, cookie, err := s.auth.Session(r.Context(), sessionIDFromRequest(r))
		if err != nil {
			writeAuthError(w, err)
			return
		}

		if cookie != nil {
			http.SetCookie(w, cookie)
		}
		writeJSON(w, http.StatusOK, introspection)
	}
}

func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessions.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
