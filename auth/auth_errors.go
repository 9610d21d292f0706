package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. The two outcomes share one public message so responses do
	// not confirm whether an account exists.
	ErrInvalidCredentials = errors.New("invalid username/email or password")

	// ErrConflict is returned when a registration collides with an existing
	// username or email.
	ErrConflict = errors.New("username or email already exists")

	// ErrUnauthenticated is returned when an operation that needs a session
	// cookie is called without one.
	ErrUnauthenticated = errors.New("no session found")
)

// ValidationError reports malformed, user-correctable input. The message is
// safe to return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(err error) error {
	return &ValidationError{Message: err.Error()}
}
