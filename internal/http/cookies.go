package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
)

// SessionCookies is the only code that writes or deletes the session cookies.
// Every other component reads the session through the resolver or the request context.
type SessionCookies struct {
	// Domain is the cookie domain. Empty means host-only cookies.
	Domain string
	// TokenHTTPOnly hides auth_token from page scripts. The user_type and
	// user_id hints stay readable so the client can render without a round trip.
	TokenHTTPOnly bool
	// RememberMeMaxAge is the cookie lifetime for "remember me" logins.
	RememberMeMaxAge time.Duration
}

// SessionParams describes a freshly authenticated session.
type SessionParams struct {
	User       domainauth.CurrentUser
	RememberMe bool
}

// Set writes auth_token, user_type and user_id. Without RememberMe they are
// browser-session cookies.
func (c *SessionCookies) Set(w http.ResponseWriter, r *http.Request, p SessionParams) {
	maxAge := 0
	if p.RememberMe && c.RememberMeMaxAge > 0 {
		maxAge = int(c.RememberMeMaxAge / time.Second)
	}
	values := map[string]string{
		domainauth.CookieAuthToken: p.User.Token,
		domainauth.CookieUserType:  string(p.User.Role),
		domainauth.CookieUserID:    p.User.UserID,
	}
	for _, name := range domainauth.SessionCookieNames() {
		ck := c.base(r, name)
		ck.Value = values[name]
		ck.MaxAge = maxAge
		if maxAge > 0 {
			ck.Expires = time.Now().Add(c.RememberMeMaxAge).UTC()
		}
		http.SetCookie(w, ck)
	}
}

// Clear deletes every session cookie. It mirrors the attributes used by Set
// so browsers match and drop the stored cookies.
func (c *SessionCookies) Clear(w http.ResponseWriter, r *http.Request) {
	for _, name := range domainauth.SessionCookieNames() {
		ck := c.base(r, name)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0).UTC()
		http.SetCookie(w, ck)
	}
}

func (c *SessionCookies) base(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: name == domainauth.CookieAuthToken && c.TokenHTTPOnly,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// requestCookies exposes the request's cookies as a ports.CookieJar.
type requestCookies struct {
	r *http.Request
}

func (j requestCookies) Get(name string) (string, bool) {
	ck, err := j.r.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
