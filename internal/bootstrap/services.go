package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/zephir/path-explorer/config"
	"github.com/zephir/path-explorer/internal/adapters/authroles"
	"github.com/zephir/path-explorer/internal/adapters/backend"
	"github.com/zephir/path-explorer/internal/adapters/jwtcodec"
	rediscache "github.com/zephir/path-explorer/internal/adapters/redis"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/ports"
	"github.com/zephir/path-explorer/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Resolver *service.SessionResolver
	// Cache is nil when Redis is disabled.
	Cache   *rediscache.Cache
	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires adapters into the application services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api, err := backend.NewClient(backend.Config{BaseURL: cfg.Backend.APIURL, Timeout: cfg.Backend.Timeout})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("backend client: %w", err)
	}

	metricsClient, err := newMetricsClient(cfg.Observability.Metrics, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	if !cfg.Auth.VerifiesSignatures() {
		logger.Warn("AUTH_JWT_SECRET not set; session tokens are decoded without signature verification")
	}
	decoder := jwtcodec.New(jwtcodec.Config{Secret: []byte(cfg.Auth.JWTSecret)})
	roles := authroles.StaticRoleMapper{}

	var (
		cache     *rediscache.Cache
		cachePort ports.Cache
	)
	if deps.RedisClient != nil {
		cache = rediscache.NewCacheWithNamespace(deps.RedisClient, cfg.Cache.Namespace)
		cachePort = cache
	}

	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Backend: api,
			Decoder: decoder,
			Roles:   roles,
			Cache:   cachePort,
			Logger:  logger,
		}),
		Profiles: service.NewProfileService(service.ProfileServiceOptions{
			Backend:  api,
			Cache:    cachePort,
			CacheTTL: cfg.Cache.ProfileTTL,
			Logger:   logger,
		}),
		Resolver: service.NewSessionResolver(service.SessionResolverOptions{
			Decoder: decoder,
			Roles:   roles,
			Logger:  logger,
		}),
		Cache:   cache,
		Metrics: metricsClient,
	}, nil
}

func newMetricsClient(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd client: %w", err)
	}
	if client.Enabled() {
		logger.Info("metrics enabled", "statsd_address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	}
	return client, nil
}
