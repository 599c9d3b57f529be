package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/observability/metrics"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/ports"
)

// SessionResolver resolves the session cookies of a request.
type SessionResolver interface {
	Resolve(jar ports.CookieJar) domainauth.Resolution
}

// GuardConfig groups dependencies for AccessGuard.
type GuardConfig struct {
	Resolver   SessionResolver
	Classifier domainauth.Classifier
	Cookies    *SessionCookies
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// guardSkipPrefixes are never guarded: API routes, assets and probes.
//
//nolint:gochecknoglobals // static read-only lookup table.
var guardSkipPrefixes = []string{"/api/", "/static/", "/_next/", "/favicon.ico", "/healthz", "/readyz"}

// sessionEndpoints answer for signed-in and signed-out callers alike, so the
// auth zone redirect must not apply to them.
//
//nolint:gochecknoglobals // static read-only lookup table.
var sessionEndpoints = map[string]bool{
	"/auth/api":           true,
	"/auth/clear-cookies": true,
	"/auth/login":         true,
	"/auth/logout":        true,
}

// AccessGuard returns a middleware that classifies each request, resolves
// the session from its cookies and applies the access policy. Requests that
// continue carry the resolved CurrentUser in their context.
func AccessGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipGuard(r) {
				next.ServeHTTP(w, r)
				return
			}

			zone := cfg.Classifier.Classify(r.URL.Path)
			res := cfg.Resolver.Resolve(requestCookies{r})
			act := domainauth.Decide(zone, res)
			metrics.EmitGuardDecision(cfg.Metrics, zone, res.Status, act)

			if act.ClearSession || res.ShouldClear() {
				cfg.Cookies.Clear(w, r)
			}
			if act.Kind == domainauth.ActionRedirect {
				logger.DebugContext(r.Context(), "access guard redirect",
					"path", r.URL.Path,
					"zone", string(zone),
					"session", string(res.Status),
					"location", act.Location,
					"clear_session", act.ClearSession)
				redirect(w, r, act.Location)
				return
			}

			user := domainauth.CurrentUser{}
			if res.Status == domainauth.SessionValid {
				user = res.User
			}
			next.ServeHTTP(w, r.WithContext(SetCurrentUserInContext(r.Context(), user)))
		})
	}
}

// skipGuard reports whether r bypasses the access policy, whatever its method.
func skipGuard(r *http.Request) bool {
	if sessionEndpoints[r.URL.Path] {
		return true
	}
	for _, p := range guardSkipPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

// currentUser returns the user for r: from the guard when it ran, else by resolving the cookies.
func currentUser(r *http.Request, resolver SessionResolver) (domainauth.CurrentUser, domainauth.Resolution) {
	if u, ok := CurrentUserFromContext(r.Context()); ok {
		status := domainauth.SessionNone
		if u.IsAuthenticated() {
			status = domainauth.SessionValid
		}
		return u, domainauth.Resolution{User: u, Status: status}
	}
	res := resolver.Resolve(requestCookies{r})
	if res.Status != domainauth.SessionValid {
		return domainauth.CurrentUser{}, res
	}
	return res.User, res
}
