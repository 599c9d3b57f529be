package ports

// Package ports defines interfaces (hexagonal ports) for session and backend behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
)

// TokenDecoder turns a bearer token into claims. It performs no I/O.
type TokenDecoder interface {
	Decode(token string) (domainauth.Claims, error)
}

// RoleMapper maps a numeric role identifier to an application role.
// It is total: unrecognized ids map to RoleUnknown.
type RoleMapper interface {
	Map(roleID int) domainauth.Role
}

// CookieJar is a read-only view of the cookies presented with a request.
type CookieJar interface {
	Get(name string) (string, bool)
}

// Cache stores short-lived byte payloads, such as backend read responses.
// Get returns a nil slice and nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
