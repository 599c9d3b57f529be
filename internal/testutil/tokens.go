package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs tokens minted by the helpers below.
const TestSecret = "path-explorer-test-secret"

// TokenSpec describes a session token to mint for tests.
// Zero-valued fields are omitted from the token.
type TokenSpec struct {
	UserID    string
	Email     string
	RoleID    int
	RoleName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SignToken mints an HS256 token with the backend's claim names.
func SignToken(t TestingTB, spec TokenSpec) string {
	t.Helper()
	return SignTokenWithSecret(t, spec, TestSecret)
}

// SignTokenWithSecret mints an HS256 token signed with secret.
func SignTokenWithSecret(t TestingTB, spec TokenSpec, secret string) string {
	t.Helper()

	claims := jwt.MapClaims{}
	if spec.UserID != "" {
		claims["id_usuario"] = spec.UserID
	}
	if spec.Email != "" {
		claims["correo"] = spec.Email
	}
	if spec.RoleID != 0 {
		claims["id_tipo_usuario"] = spec.RoleID
	}
	if spec.RoleName != "" {
		claims["tipo_usuario"] = spec.RoleName
	}
	if !spec.IssuedAt.IsZero() {
		claims["iat"] = spec.IssuedAt.Unix()
	}
	if !spec.ExpiresAt.IsZero() {
		claims["exp"] = spec.ExpiresAt.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// EmployeeToken mints a token for an employee identified only by numeric role id.
func EmployeeToken(t TestingTB, userID string, expiresAt time.Time) string {
	t.Helper()
	return SignToken(t, TokenSpec{UserID: userID, Email: userID + "@zephir.test", RoleID: 3, ExpiresAt: expiresAt})
}
