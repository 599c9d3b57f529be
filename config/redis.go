package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis connection configuration.
// Redis is optional: it only backs the read cache for backend responses.
type RedisConfig struct {
	Enabled            bool     `env:"ENABLED"              envDefault:"false"`
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}

// Sanitize trims addresses and drops empty sentinel nodes.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	nodes := r.SentinelNodes[:0]
	for _, n := range r.SentinelNodes {
		if n = strings.TrimSpace(n); n != "" {
			nodes = append(nodes, n)
		}
	}
	r.SentinelNodes = nodes
	if r.DB < 0 {
		r.DB = 0
	}
}

// CacheConfig controls caching of backend reads.
type CacheConfig struct {
	// ProfileTTL is how long skills, certifications and projects stay cached.
	ProfileTTL time.Duration `env:"CACHE_PROFILE_TTL" envDefault:"5m"`
	// Namespace prefixes every cache key.
	Namespace string `env:"CACHE_NAMESPACE" envDefault:"pathexplorer:"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.ProfileTTL <= 0 {
		c.ProfileTTL = 5 * time.Minute
	}
	if c.Namespace = strings.TrimSpace(c.Namespace); c.Namespace == "" {
		c.Namespace = "pathexplorer:"
	}
}
