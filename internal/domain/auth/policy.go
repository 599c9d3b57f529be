package auth

import "net/url"

// Redirect targets used by the access policy.
const (
	PathRoot          = "/"
	PathAdminHome     = "/admin"
	PathLeadHome      = "/lead"
	PathDashboard     = "/dashboard"
	PathInvalidToken  = "/?invalidToken=true"
	InvalidTokenParam = "invalidToken"
)

// ActionKind says whether the request proceeds or is redirected.
type ActionKind string

const (
	ActionContinue ActionKind = "continue"
	ActionRedirect ActionKind = "redirect"
)

// Action is the access guard's decision for one request.
// ClearSession asks the caller to delete every session cookie before acting.
type Action struct {
	Kind         ActionKind
	Location     string
	ClearSession bool
}

// Continue lets the request through.
func Continue() Action { return Action{Kind: ActionContinue} }

// RedirectTo redirects without touching the session.
func RedirectTo(path string) Action { return Action{Kind: ActionRedirect, Location: path} }

// ClearAndRedirect deletes the session cookies and redirects.
func ClearAndRedirect(path string) Action {
	return Action{Kind: ActionRedirect, Location: path, ClearSession: true}
}

// Name is a stable label for logs and metrics.
func (a Action) Name() string {
	switch {
	case a.Kind == ActionRedirect && a.ClearSession:
		return "clear_and_redirect"
	case a.Kind == ActionRedirect:
		return "redirect"
	case a.ClearSession:
		return "clear_and_continue"
	default:
		return "continue"
	}
}

// RoleHome returns the landing path for a user's role.
// Employees land on their own dashboard, or the generic one when the id is missing.
func RoleHome(u CurrentUser) string {
	switch u.Role {
	case RoleAdmin:
		return PathAdminHome
	case RoleLead:
		return PathLeadHome
	case RoleEmployee:
		if u.UserID == "" {
			return PathDashboard
		}
		return "/" + url.PathEscape(u.UserID) + PathDashboard
	default:
		return PathRoot
	}
}

// zoneRole is the only role admitted to each role-owned zone.
//
//nolint:gochecknoglobals // static read-only lookup table.
var zoneRole = map[Zone]Role{
	ZoneAdmin:    RoleAdmin,
	ZoneLead:     RoleLead,
	ZoneEmployee: RoleEmployee,
}

// Decide evaluates the access rules for a request in zone with the resolved session.
// Rules are checked in order and the first match wins.
func Decide(zone Zone, res Resolution) Action {
	if res.Status == SessionExpired {
		return ClearAndRedirect(PathInvalidToken)
	}

	if res.Status != SessionValid || !res.User.IsAuthenticated() {
		act := decideAnonymous(zone)
		// A token that cannot be decoded is treated as absent, but it is still removed.
		act.ClearSession = res.Status == SessionMalformed
		return act
	}

	return decideAuthenticated(zone, res.User)
}

func decideAnonymous(zone Zone) Action {
	if zone.Protected() {
		return RedirectTo(PathRoot)
	}
	return Continue()
}

func decideAuthenticated(zone Zone, u CurrentUser) Action {
	if !u.Role.Known() {
		// An unresolvable role is a corrupted session; never guess one.
		if zone == ZoneRoot || zone == ZoneAuth || zone.Protected() {
			return ClearAndRedirect(PathRoot)
		}
		return Continue()
	}

	switch zone {
	case ZoneRoot, ZoneAuth:
		return RedirectTo(RoleHome(u))
	case ZoneAdmin, ZoneLead, ZoneEmployee:
		if u.Role != zoneRole[zone] {
			return RedirectTo(RoleHome(u))
		}
	}
	return Continue()
}
