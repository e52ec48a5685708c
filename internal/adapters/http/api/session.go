package api

import (
	"net/http"

	"github.com/okian/xgxt/internal/adapters/session"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "xgxt_session"

type sessionCookies struct {
	secure bool
}

// id returns the session id of r, or "" when it has none.
func (sessionCookies) id(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil || !session.ValidID(c.Value) {
		return ""
	}
	return c.Value
}

// ensure returns the session id of r, issuing a new cookie when needed.
func (s sessionCookies) ensure(w http.ResponseWriter, r *http.Request) string {
	if id := s.id(r); id != "" {
		return id
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
