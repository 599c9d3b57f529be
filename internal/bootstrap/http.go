package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/zephir/path-explorer/config"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	httpx "github.com/zephir/path-explorer/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router and its middleware from config and services.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Auth:     cfg.Services.Auth,
		Profiles: cfg.Services.Profiles,
		Resolver: cfg.Services.Resolver,
		Cookies: &httpx.SessionCookies{
			Domain:           appCfg.HTTP.CookieDomain,
			TokenHTTPOnly:    appCfg.Auth.TokenHTTPOnly,
			RememberMeMaxAge: appCfg.Auth.RememberMeMaxAge,
		},
		Classifier:  domainauth.Classifier{Strict: appCfg.Auth.StrictZoneMatch},
		ReadyChecks: map[string]httpx.ReadyCheck{},
		Logger:      logger,
	}
	if cfg.Services.Metrics != nil {
		services.Metrics = cfg.Services.Metrics
	}
	if cfg.Services.Cache != nil {
		services.ReadyChecks["redis"] = cfg.Services.Cache.Health
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel}
	}

	return httpx.NewRouter(services)
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeHTTP listens and serves until ctx is cancelled, then shuts the server down
// within shutdownTimeout.
func ServeHTTP(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	return serve(ctx, server, ln, shutdownTimeout, logger)
}

func serve(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
