package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zephir/path-explorer/internal/adapters/authroles"
	"github.com/zephir/path-explorer/internal/adapters/jwtcodec"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/ports"
	"github.com/zephir/path-explorer/internal/service"
	"github.com/zephir/path-explorer/internal/testutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver() *service.SessionResolver {
	return service.NewSessionResolver(service.SessionResolverOptions{
		Decoder: jwtcodec.New(jwtcodec.Config{Secret: []byte(testutil.TestSecret)}),
		Roles:   authroles.StaticRoleMapper{},
		Now:     testutil.FixedTimeFunc(testNow),
	})
}

func newTestCookies() *SessionCookies {
	return &SessionCookies{TokenHTTPOnly: true, RememberMeMaxAge: 720 * time.Hour}
}

// fakeAuthService is a test double for AuthService.
type fakeAuthService struct {
	loginFunc func(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)

	mu        sync.Mutex
	logins    []service.LoginInput
	loggedOut []domainauth.CurrentUser
}

func (f *fakeAuthService) Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	f.mu.Lock()
	f.logins = append(f.logins, in)
	f.mu.Unlock()
	if f.loginFunc != nil {
		return f.loginFunc(ctx, in)
	}
	return nil, context.Canceled
}

func (f *fakeAuthService) Logout(_ context.Context, user domainauth.CurrentUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, user)
}

// fakeProfileService is a test double for ProfileService.
type fakeProfileService struct {
	dashboardFunc func(ctx context.Context, viewer domainauth.CurrentUser, employeeID string) (*service.EmployeeDashboard, error)
	usersFunc     func(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error)
	teamFunc      func(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error)
}

func (f *fakeProfileService) Dashboard(ctx context.Context, viewer domainauth.CurrentUser, employeeID string) (*service.EmployeeDashboard, error) {
	if f.dashboardFunc != nil {
		return f.dashboardFunc(ctx, viewer, employeeID)
	}
	return &service.EmployeeDashboard{Employee: ports.BackendUser{ID: employeeID}}, nil
}

func (f *fakeProfileService) Users(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error) {
	if f.usersFunc != nil {
		return f.usersFunc(ctx, viewer)
	}
	return []ports.BackendUser{}, nil
}

func (f *fakeProfileService) Team(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error) {
	if f.teamFunc != nil {
		return f.teamFunc(ctx, viewer)
	}
	return []ports.BackendUser{}, nil
}

type testEnv struct {
	handler  http.Handler
	auth     *fakeAuthService
	profiles *fakeProfileService
	metrics  *statsd.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:     &fakeAuthService{},
		profiles: &fakeProfileService{},
		metrics:  &statsd.Recorder{},
	}
	env.handler = NewRouter(RouterServices{
		Auth:       env.auth,
		Profiles:   env.profiles,
		Resolver:   newTestResolver(),
		Cookies:    newTestCookies(),
		Classifier: domainauth.Classifier{Strict: true},
		Metrics:    env.metrics,
	})
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// sessionRequest builds a request carrying the given session cookies. Empty values are skipped.
func sessionRequest(method, target string, cookies map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for name, value := range cookies {
		if value != "" {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}
	return req
}

func bodyRequest(method, target, body string) *http.Request {
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// clearedAll reports whether the response deletes every session cookie.
func clearedAll(rec *httptest.ResponseRecorder) bool {
	for _, name := range domainauth.SessionCookieNames() {
		c := findCookie(rec, name)
		if c == nil || c.MaxAge >= 0 {
			return false
		}
	}
	return true
}

func validToken(t *testing.T, spec testutil.TokenSpec) string {
	t.Helper()
	if spec.ExpiresAt.IsZero() {
		spec.ExpiresAt = testNow.Add(time.Hour)
	}
	return testutil.SignToken(t, spec)
}
