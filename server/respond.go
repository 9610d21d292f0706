package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forumgate/forumgate/auth"
	"github.com/forumgate/forumgate/forum"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeAuthError maps façade error kinds to statuses. Anything outside the
// taxonomy is logged with full detail server-side and surfaced as a generic
// internal error; store and hash detail never reaches the response body.
func writeAuthError(w http.ResponseWriter, err error) {
	var validationErr *auth.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Err(err).Msg("auth operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeForumError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forum.ErrGroupNotFound), errors.Is(err, forum.ErrThreadNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, forum.ErrThreadLocked):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Err(err).Msg("forum operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
