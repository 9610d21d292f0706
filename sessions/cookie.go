package sessions

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "auth_session"

// CookieCodec formats session ids into transport cookies. It performs no
// I/O; callers attach the result to their response.
type CookieCodec struct {
	secure bool
}

// NewCookieCodec returns a codec. secure controls the Secure attribute and
// should be true everywhere except local development over plain HTTP.
func NewCookieCodec(secure bool) *CookieCodec {
	return &CookieCodec{secure: secure}
}

// New builds the session cookie for id with a max age of lifetime.
func (c *CookieCodec) New(id string, lifetime time.Duration) *http.Cookie {
	cookie := c.base()
	cookie.Value = id
	cookie.MaxAge = int(lifetime / time.Second)
	return cookie
}

// Blank builds an empty cookie that actively clears the session cookie on
// the client, used on logout and on failed validation.
func (c *CookieCodec) Blank() *http.Cookie {
	cookie := c.base()
	cookie.MaxAge = -1
	return cookie
}

func (c *CookieCodec) base() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
