package auth

// Package auth contains domain-level types for sessions, route zones and access decisions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Cookie names persisted in the browser. These are part of the external contract.
const (
	CookieAuthToken = "auth_token"
	CookieUserType  = "user_type"
	CookieUserID    = "user_id"
)

// SessionCookieNames lists every cookie that makes up a session, in clearing order.
func SessionCookieNames() []string {
	return []string{CookieAuthToken, CookieUserType, CookieUserID}
}

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLead     Role = "lead"
	RoleEmployee Role = "employee"
	RoleUnknown  Role = "unknown"
)

// ParseRole returns the canonical role for a role name.
// The second return value is false when name is not one of the known role names.
func ParseRole(name string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(name))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleLead:
		return RoleLead, true
	case RoleEmployee:
		return RoleEmployee, true
	case RoleUnknown:
		return RoleUnknown, true
	default:
		return "", false
	}
}

// Known reports whether r is one of admin, lead or employee.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleLead || r == RoleEmployee
}

// Claims is the fixed-shape payload decoded from a bearer session token.
// RoleID is zero and RoleName empty when the token does not carry them.
type Claims struct {
	Subject   string
	Email     string
	RoleID    int
	RoleName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the token carries any role information.
func (c Claims) HasRole() bool {
	return c.RoleName != "" || c.RoleID != 0
}

// CurrentUser is the normalized view of who is making a request.
// The zero value means "no session".
type CurrentUser struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Token  string `json:"-"`
}

// IsAuthenticated reports whether the user carries a valid token.
func (u CurrentUser) IsAuthenticated() bool { return u.Token != "" }

// SessionStatus describes the outcome of resolving a session from cookies.
type SessionStatus string

const (
	// SessionNone means no auth token was presented.
	SessionNone SessionStatus = "none"
	// SessionValid means the token decoded and has not expired.
	SessionValid SessionStatus = "valid"
	// SessionMalformed means the token could not be decoded.
	SessionMalformed SessionStatus = "malformed"
	// SessionExpired means the token decoded but its expiry has elapsed.
	SessionExpired SessionStatus = "expired"
)

// Resolution is the result of resolving a cookie jar into a CurrentUser.
type Resolution struct {
	User   CurrentUser
	Status SessionStatus
}

// ShouldClear reports whether the stored cookies are invalid and must be removed.
func (r Resolution) ShouldClear() bool {
	return r.Status == SessionMalformed || r.Status == SessionExpired
}
