package httpx

import (
	"context"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
)

// currentUserKey is an unexported context key type to avoid collisions across packages.
type currentUserKey struct{}

// requestIDKey carries the id assigned by RequestID.
type requestIDKey struct{}

// SetCurrentUserInContext returns a child context that carries the resolved user.
// The zero CurrentUser is stored too, so handlers can tell "guard ran, no session" apart from "guard skipped".
func SetCurrentUserInContext(ctx context.Context, u domainauth.CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey{}, u)
}

// CurrentUserFromContext returns the user stored by the access guard and whether one was stored.
func CurrentUserFromContext(ctx context.Context) (domainauth.CurrentUser, bool) {
	u, ok := ctx.Value(currentUserKey{}).(domainauth.CurrentUser)
	return u, ok
}

// RequestIDFromContext returns the request id, or "" outside of RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
