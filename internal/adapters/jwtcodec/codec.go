package jwtcodec

// Package jwtcodec decodes session bearer tokens into domain claims.

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/ports"
)

var _ ports.TokenDecoder = (*Codec)(nil)

var (
	errEmptyToken     = errors.New("token is empty")
	errMissingSubject = errors.New("token has no subject user id")
	errMissingExpiry  = errors.New("token has no expiry")
)

// Config controls token decoding.
type Config struct {
	// Secret enables HMAC signature verification when non-empty.
	// Without it tokens are decoded but not verified; the backend remains the authority.
	Secret []byte
}

// Codec implements ports.TokenDecoder on top of golang-jwt.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// New builds a Codec. Expiry is never enforced by the parser; callers use IsExpired
// so the boundary semantics stay in one place.
func New(cfg Config) *Codec {
	opts := []jwt.ParserOption{jwt.WithoutClaimsValidation()}
	if len(cfg.Secret) > 0 {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	}
	return &Codec{
		secret: append([]byte(nil), cfg.Secret...),
		parser: jwt.NewParser(opts...),
	}
}

// Verifying reports whether signatures are checked.
func (c *Codec) Verifying() bool { return len(c.secret) > 0 }

// Decode parses token into claims. Every failure is a MalformedToken AppError.
func (c *Codec) Decode(token string) (domainauth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Claims{}, apperrors.MalformedToken(errEmptyToken)
	}

	var tc tokenClaims
	var err error
	if c.Verifying() {
		_, err = c.parser.ParseWithClaims(token, &tc, c.key)
	} else {
		_, _, err = c.parser.ParseUnverified(token, &tc)
	}
	if err != nil {
		return domainauth.Claims{}, apperrors.MalformedToken(err)
	}

	claims, err := tc.toDomain()
	if err != nil {
		return domainauth.Claims{}, apperrors.MalformedToken(err)
	}
	return claims, nil
}

func (c *Codec) key(_ *jwt.Token) (any, error) {
	return c.secret, nil
}

// IsExpired reports whether claims expired before now, at one-second resolution.
// A token whose expiry equals now is still valid.
func IsExpired(claims domainauth.Claims, now time.Time) bool {
	return claims.ExpiresAt.Unix() < now.Unix()
}

// tokenClaims is the wire shape issued by the HR backend.
type tokenClaims struct {
	UserID   userID `json:"id_usuario,omitempty"`
	Email    string `json:"correo,omitempty"`
	RoleID   roleID `json:"id_tipo_usuario,omitempty"`
	RoleName string `json:"tipo_usuario,omitempty"`
	jwt.RegisteredClaims
}

func (tc tokenClaims) toDomain() (domainauth.Claims, error) {
	subject := strings.TrimSpace(string(tc.UserID))
	if subject == "" {
		subject = strings.TrimSpace(tc.Subject)
	}
	if subject == "" {
		return domainauth.Claims{}, errMissingSubject
	}
	if tc.ExpiresAt == nil {
		return domainauth.Claims{}, errMissingExpiry
	}

	claims := domainauth.Claims{
		Subject:   subject,
		Email:     tc.Email,
		RoleID:    int(tc.RoleID),
		RoleName:  strings.TrimSpace(tc.RoleName),
		ExpiresAt: tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	return claims, nil
}

// roleID accepts the numeric role either as a JSON number or a numeric string.
type roleID int

func (r *roleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("id_tipo_usuario: %w", err)
	}
	*r = roleID(n)
	return nil
}

// userID accepts the user id either as a JSON string or an integer.
type userID string

func (u *userID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*u = userID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id_usuario: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id_usuario %s is not an integer", n)
	}
	*u = userID(n.String())
	return nil
}
