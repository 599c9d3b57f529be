package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/zephir/path-explorer/internal/adapters/jwtcodec"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/ports"
)

// CookieValues is an in-memory ports.CookieJar.
type CookieValues map[string]string

// Get returns the named cookie when it is present and non-empty.
func (c CookieValues) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok && v != ""
}

// SessionResolverOptions groups dependencies for SessionResolver.
type SessionResolverOptions struct {
	Decoder ports.TokenDecoder
	Roles   ports.RoleMapper
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// SessionResolver turns the session cookies of a request into a CurrentUser.
// It holds no per-request state and is safe for concurrent use.
type SessionResolver struct {
	decoder ports.TokenDecoder
	roles   ports.RoleMapper
	now     func() time.Time
	logger  *slog.Logger
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(opts SessionResolverOptions) *SessionResolver {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionResolver{decoder: opts.Decoder, roles: opts.Roles, now: now, logger: logger}
}

// Resolve reads the auth token and the role/user-id hints from jar.
//
// Role precedence: a recognized user_type cookie, then the token's role name,
// then the token's numeric role id through the role mapper, else RoleUnknown.
// User id precedence: the user_id cookie, then the token subject.
func (r *SessionResolver) Resolve(jar ports.CookieJar) domainauth.Resolution {
	token, ok := jar.Get(domainauth.CookieAuthToken)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return domainauth.Resolution{Status: domainauth.SessionNone}
	}

	claims, err := r.decoder.Decode(token)
	if err != nil {
		r.logger.Debug("session token rejected", "reason", "malformed", "error", err)
		return domainauth.Resolution{Status: domainauth.SessionMalformed}
	}
	if jwtcodec.IsExpired(claims, r.now()) {
		r.logger.Debug("session token rejected", "reason", "expired", "expires_at", claims.ExpiresAt)
		return domainauth.Resolution{Status: domainauth.SessionExpired}
	}

	return domainauth.Resolution{
		Status: domainauth.SessionValid,
		User: domainauth.CurrentUser{
			UserID: r.resolveUserID(jar, claims),
			Role:   r.resolveRole(jar, claims),
			Token:  token,
		},
	}
}

func (r *SessionResolver) resolveRole(jar ports.CookieJar, claims domainauth.Claims) domainauth.Role {
	if hint, ok := jar.Get(domainauth.CookieUserType); ok {
		if role, known := domainauth.ParseRole(hint); known && role.Known() {
			return role
		}
	}
	return RoleFromClaims(claims, r.roles)
}

func (r *SessionResolver) resolveUserID(jar ports.CookieJar, claims domainauth.Claims) string {
	if hint, ok := jar.Get(domainauth.CookieUserID); ok {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return claims.Subject
}

// RoleFromClaims derives a role from the token alone: its role name when recognized,
// otherwise its numeric role id.
func RoleFromClaims(claims domainauth.Claims, roles ports.RoleMapper) domainauth.Role {
	if !claims.HasRole() {
		return domainauth.RoleUnknown
	}
	if role, ok := domainauth.ParseRole(claims.RoleName); ok && role.Known() {
		return role
	}
	if claims.RoleID != 0 && roles != nil {
		return roles.Map(claims.RoleID)
	}
	return domainauth.RoleUnknown
}
