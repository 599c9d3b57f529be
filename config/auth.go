package config

import "time"

// AuthConfig groups session token and cookie policy.
type AuthConfig struct {
	// JWTSecret enables HMAC signature verification of session tokens.
	// When empty, tokens are decoded without verification and the backend
	// remains the only authority that checks signatures.
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	// TokenHTTPOnly hides the auth_token cookie from page scripts.
	// The user_type and user_id hint cookies are always script-readable.
	TokenHTTPOnly bool `env:"AUTH_TOKEN_HTTP_ONLY" envDefault:"true"`

	// RememberMeMaxAge is the cookie lifetime when "remember me" is checked.
	// Without it the cookies last for the browser session.
	RememberMeMaxAge time.Duration `env:"AUTH_REMEMBER_ME_MAX_AGE" envDefault:"720h"`

	// StrictZoneMatch makes route zones match on path segment boundaries,
	// so /admin2 is not treated as part of /admin.
	StrictZoneMatch bool `env:"AUTH_STRICT_ZONE_MATCH" envDefault:"true"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.RememberMeMaxAge <= 0 {
		a.RememberMeMaxAge = 30 * 24 * time.Hour
	}
}

// VerifiesSignatures reports whether session tokens are signature-checked locally.
func (a *AuthConfig) VerifiesSignatures() bool {
	return a.JWTSecret != ""
}
