package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/observability/metrics"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/testutil"
)

func TestAccessGuard_Scenarios(t *testing.T) {
	leadToken := validToken(t, testutil.TokenSpec{UserID: "7", RoleID: 2})
	employeeToken := testutil.EmployeeToken(t, "42", testNow.Add(time.Hour))
	expired := testutil.EmployeeToken(t, "42", testNow.Add(-time.Minute))

	tests := []struct {
		name     string
		path     string
		cookies  map[string]string
		location string
		cleared  bool
	}{
		{
			name:     "anonymous on lead zone goes to login",
			path:     "/lead",
			location: "/",
		},
		{
			name:     "lead on root goes to lead home",
			path:     "/",
			cookies:  map[string]string{domainauth.CookieAuthToken: leadToken, domainauth.CookieUserType: "lead"},
			location: "/lead",
		},
		{
			name:     "expired token on root",
			path:     "/",
			cookies:  map[string]string{domainauth.CookieAuthToken: expired, domainauth.CookieUserType: "employee"},
			location: domainauth.PathInvalidToken,
			cleared:  true,
		},
		{
			name:     "expired token on protected zone",
			path:     "/admin/users",
			cookies:  map[string]string{domainauth.CookieAuthToken: expired},
			location: domainauth.PathInvalidToken,
			cleared:  true,
		},
		{
			name:     "expired token on unguarded page",
			path:     "/42/dashboard",
			cookies:  map[string]string{domainauth.CookieAuthToken: expired},
			location: domainauth.PathInvalidToken,
			cleared:  true,
		},
		{
			name:     "role from numeric id without user_type",
			path:     "/",
			cookies:  map[string]string{domainauth.CookieAuthToken: employeeToken},
			location: "/42/dashboard",
		},
		{
			name: "employee with user id hint on root",
			path: "/",
			cookies: map[string]string{
				domainauth.CookieAuthToken: employeeToken,
				domainauth.CookieUserType:  "employee",
				domainauth.CookieUserID:    "42",
			},
			location: "/42/dashboard",
		},
		{
			name:     "lead on admin zone goes to own home",
			path:     "/admin",
			cookies:  map[string]string{domainauth.CookieAuthToken: leadToken},
			location: "/lead",
		},
		{
			name:     "employee on lead zone goes to own dashboard",
			path:     "/lead/team",
			cookies:  map[string]string{domainauth.CookieAuthToken: employeeToken},
			location: "/42/dashboard",
		},
		{
			name:     "signed in user on auth zone",
			path:     "/auth/forgot-password",
			cookies:  map[string]string{domainauth.CookieAuthToken: leadToken},
			location: "/lead",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(sessionRequest(http.MethodGet, tt.path, tt.cookies))

			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			assert.Equal(t, tt.cleared, clearedAll(rec))
		})
	}
}

func TestAccessGuard_ExpiredCookieIsRemovedFromJar(t *testing.T) {
	env := newTestEnv(t)
	expired := testutil.EmployeeToken(t, "42", testNow.Add(-time.Second))
	rec := env.do(sessionRequest(http.MethodGet, "/dashboard", map[string]string{domainauth.CookieAuthToken: expired}))

	c := findCookie(rec, domainauth.CookieAuthToken)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.Equal(t, "/", c.Path)
}

func TestAccessGuard_Continue(t *testing.T) {
	adminToken := validToken(t, testutil.TokenSpec{UserID: "1", RoleName: "admin"})

	tests := []struct {
		name    string
		path    string
		cookies map[string]string
		status  int
	}{
		{"anonymous login page", "/", nil, http.StatusOK},
		{"anonymous auth page", "/auth/forgot-password", nil, http.StatusOK},
		{"anonymous other zone", "/about", nil, http.StatusNotFound},
		{"admin on admin zone", "/admin", map[string]string{domainauth.CookieAuthToken: adminToken}, http.StatusOK},
		{"segment boundary", "/admin2", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(sessionRequest(http.MethodGet, tt.path, tt.cookies))
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
		})
	}
}

func TestAccessGuard_MalformedTokenIsClearedAndTreatedAsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(sessionRequest(http.MethodGet, "/", map[string]string{
		domainauth.CookieAuthToken: "not-a-token",
		domainauth.CookieUserType:  "admin",
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, clearedAll(rec))

	rec = env.do(sessionRequest(http.MethodGet, "/admin", map[string]string{domainauth.CookieAuthToken: "not-a-token"}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.True(t, clearedAll(rec))
}

func TestAccessGuard_UnknownRoleClearsSession(t *testing.T) {
	env := newTestEnv(t)
	roleless := validToken(t, testutil.TokenSpec{UserID: "5"})

	for _, path := range []string{"/", "/auth/forgot-password", "/admin", "/dashboard"} {
		rec := env.do(sessionRequest(http.MethodGet, path, map[string]string{domainauth.CookieAuthToken: roleless}))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
		assert.True(t, clearedAll(rec), path)
	}
}

func TestAccessGuard_HTMXRedirect(t *testing.T) {
	env := newTestEnv(t)
	req := sessionRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Hx-Request", "true")

	rec := env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Hx-Redirect"))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestAccessGuard_SkipsUnguardedPaths(t *testing.T) {
	env := newTestEnv(t)
	expired := testutil.EmployeeToken(t, "42", testNow.Add(-time.Hour))
	cookies := map[string]string{domainauth.CookieAuthToken: expired}

	rec := env.do(sessionRequest(http.MethodGet, "/healthz", cookies))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = env.do(sessionRequest(http.MethodGet, "/static/app.css", cookies))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The session accessor answers instead of being redirected.
	rec = env.do(sessionRequest(http.MethodGet, "/auth/api", cookies))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	assert.Zero(t, env.metrics.Counts(metrics.GuardDecision, nil))
}

func TestAccessGuard_LegacyPrefixMatching(t *testing.T) {
	h := AccessGuard(GuardConfig{
		Resolver:   newTestResolver(),
		Classifier: domainauth.Classifier{Strict: false},
		Cookies:    newTestCookies(),
	})(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin2", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAccessGuard_StoresCurrentUser(t *testing.T) {
	token := validToken(t, testutil.TokenSpec{UserID: "7", RoleName: "lead"})
	var got domainauth.CurrentUser
	var stored bool
	h := AccessGuard(GuardConfig{
		Resolver:   newTestResolver(),
		Classifier: domainauth.Classifier{Strict: true},
		Cookies:    newTestCookies(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, stored = CurrentUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(http.MethodGet, "/lead/team", map[string]string{domainauth.CookieAuthToken: token}))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, stored)
	assert.Equal(t, domainauth.CurrentUser{UserID: "7", Role: domainauth.RoleLead, Token: token}, got)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(http.MethodGet, "/about", nil))
	assert.True(t, stored)
	assert.Equal(t, domainauth.CurrentUser{}, got)
}

func TestAccessGuard_EmitsDecisionMetrics(t *testing.T) {
	rec := &statsd.Recorder{}
	h := AccessGuard(GuardConfig{
		Resolver:   newTestResolver(),
		Classifier: domainauth.Classifier{Strict: true},
		Cookies:    newTestCookies(),
		Metrics:    rec,
	})(http.NotFoundHandler())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/lead", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, int64(1), rec.Counts(metrics.GuardDecision, map[string]string{
		"zone": "lead", "session": "none", "action": "redirect",
	}))
	assert.Equal(t, int64(1), rec.Counts(metrics.GuardDecision, map[string]string{
		"zone": "root", "action": "continue",
	}))
}

func TestAccessGuard_GuardsEveryMethod(t *testing.T) {
	called := 0
	h := AccessGuard(GuardConfig{
		Resolver:   newTestResolver(),
		Classifier: domainauth.Classifier{Strict: true},
		Cookies:    newTestCookies(),
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called++
	}))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/admin/users", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, method)
		assert.Equal(t, "/", rec.Header().Get("Location"), method)
	}
	assert.Zero(t, called)

	leadToken := validToken(t, testutil.TokenSpec{UserID: "7", RoleID: 2})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(http.MethodPost, "/admin", map[string]string{domainauth.CookieAuthToken: leadToken}))
	assert.Equal(t, "/lead", rec.Header().Get("Location"))
	assert.Zero(t, called)
}

func TestAccessGuard_SessionEndpointsSkipPolicy(t *testing.T) {
	var paths []string
	h := AccessGuard(GuardConfig{
		Resolver:   newTestResolver(),
		Classifier: domainauth.Classifier{Strict: true},
		Cookies:    newTestCookies(),
	})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, stored := CurrentUserFromContext(r.Context())
		assert.False(t, stored, r.URL.Path)
		paths = append(paths, r.URL.Path)
	}))

	token := testutil.EmployeeToken(t, "42", testNow.Add(time.Hour))
	cookies := map[string]string{domainauth.CookieAuthToken: token}
	for _, req := range []*http.Request{
		sessionRequest(http.MethodPost, "/auth/login", cookies),
		sessionRequest(http.MethodPost, "/auth/logout", cookies),
		sessionRequest(http.MethodDelete, "/auth/api", cookies),
		sessionRequest(http.MethodPost, "/api/auth/logout", cookies),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, req.URL.Path)
	}
	assert.Equal(t, []string{"/auth/login", "/auth/logout", "/auth/api", "/api/auth/logout"}, paths)
}
