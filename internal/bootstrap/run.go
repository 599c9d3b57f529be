package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/zephir/path-explorer/config"
)

// Run connects infrastructure, wires services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if cfg == nil {
		return errors.New("config is required")
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient, err = ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	} else {
		logger.InfoContext(ctx, "redis disabled; backend reads are not cached")
	}

	services, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: redisClient, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	handler := BuildHTTPHandler(&HTTPServerConfig{Config: cfg, Services: services, Logger: logger})
	server := NewHTTPServer(cfg.HTTP.Addr, handler)
	return ServeHTTP(ctx, server, cfg.HTTP.ShutdownTimeout, logger)
}
