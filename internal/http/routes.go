package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AuthService
	Profiles   ProfileService
	Resolver   SessionResolver
	Cookies    *SessionCookies
	Classifier domainauth.Classifier
	// Optional: nil disables metrics.
	Metrics statsd.Sink
	// Optional: dependencies probed by /readyz.
	ReadyChecks map[string]ReadyCheck
	// Optional: nil disables response compression.
	Compression *CompressionConfig
	Logger      *slog.Logger
}

// NewRouter creates the HTTP router wrapped in the middleware chain:
// request id, access log, panic recovery, compression and the access guard.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerAuthRoutes(mux, &AuthHandlers{
		Svc:      services.Auth,
		Resolver: services.Resolver,
		Cookies:  services.Cookies,
		Metrics:  services.Metrics,
		Logger:   logger,
	})
	registerPageRoutes(mux, &PageHandlers{
		Profiles: services.Profiles,
		Resolver: services.Resolver,
		Cookies:  services.Cookies,
		Metrics:  services.Metrics,
		Logger:   logger,
	})
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.ReadyChecks, logger))

	mws := []func(http.Handler) http.Handler{RequestID(), Logging(logger), Recover(logger)}
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		mws = append(mws, Compression(cfg))
	}
	mws = append(mws, AccessGuard(GuardConfig{
		Resolver:   services.Resolver,
		Classifier: services.Classifier,
		Cookies:    services.Cookies,
		Metrics:    services.Metrics,
		Logger:     logger,
	}))
	return Chain(mux, mws...)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/api", h.Session)
	mux.HandleFunc("POST /auth/api", h.SessionAction)
	mux.HandleFunc("DELETE /auth/api", h.EndSession)
	mux.HandleFunc("GET /auth/clear-cookies", h.ClearCookies)
	mux.HandleFunc("GET /api/auth/clear-cookies", h.ClearCookies)
	mux.HandleFunc("GET /api/auth/logout", h.LogoutRedirect)
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Login)
	mux.HandleFunc("GET /auth/forgot-password", h.ForgotPassword)
	mux.HandleFunc("GET /dashboard", h.Dashboard)
	mux.HandleFunc("GET /{employeeID}/dashboard", h.EmployeeDashboard)
	mux.HandleFunc("GET /admin", h.AdminHome)
	mux.HandleFunc("GET /admin/users", h.AdminHome)
	mux.HandleFunc("GET /lead", h.LeadHome)
	mux.HandleFunc("GET /lead/team", h.LeadHome)
}
