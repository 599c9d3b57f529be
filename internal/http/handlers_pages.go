package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/observability/metrics"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/ports"
	"github.com/zephir/path-explorer/internal/service"
)

// ProfileService defines the read operations behind the landing pages.
type ProfileService interface {
	Dashboard(ctx context.Context, viewer domainauth.CurrentUser, employeeID string) (*service.EmployeeDashboard, error)
	Users(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error)
	Team(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error)
}

// PageHandlers serve the JSON view models of the application pages.
type PageHandlers struct {
	Profiles ProfileService
	Resolver SessionResolver
	Cookies  *SessionCookies
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// viewer is the signed-in user as exposed to page models.
type viewer struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func viewerOf(u domainauth.CurrentUser) viewer {
	return viewer{UserID: u.UserID, Role: string(u.Role)}
}

// Login serves the login page model.
// GET /.
func (h *PageHandlers) Login(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"page":            "login",
		"session_expired": r.URL.Query().Get(domainauth.InvalidTokenParam) == "true",
	})
}

// ForgotPassword serves the password recovery page model.
// GET /auth/forgot-password.
func (h *PageHandlers) ForgotPassword(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"page": "forgot-password"})
}

// Dashboard sends the user to their role's landing page.
// GET /dashboard.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	home := domainauth.RoleHome(u)
	if home == domainauth.PathDashboard {
		// Employee session without a user id: nothing more specific to send them to.
		WriteJSON(w, http.StatusOK, map[string]any{"page": "dashboard", "viewer": viewerOf(u)})
		return
	}
	redirect(w, r, home)
}

// EmployeeDashboard serves an employee's profile with skills, certifications and projects.
// Employees may only open their own dashboard.
// GET /{employeeID}/dashboard.
func (h *PageHandlers) EmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	employeeID := r.PathValue("employeeID")
	if u.Role == domainauth.RoleEmployee && employeeID != u.UserID {
		redirect(w, r, domainauth.RoleHome(u))
		return
	}

	dash, err := h.Profiles.Dashboard(r.Context(), u, employeeID)
	if err != nil {
		h.backendFailure(w, r, err)
		return
	}
	metrics.EmitDegradedSections(h.Metrics, dash.Degraded)
	WriteJSON(w, http.StatusOK, map[string]any{
		"page":      "employee-dashboard",
		"viewer":    viewerOf(u),
		"dashboard": dash,
	})
}

// AdminHome serves the user directory for administrators.
// GET /admin and GET /admin/users.
func (h *PageHandlers) AdminHome(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireRole(w, r, domainauth.RoleAdmin)
	if !ok {
		return
	}
	users, err := h.Profiles.Users(r.Context(), u)
	if err != nil {
		h.backendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"page": "admin", "viewer": viewerOf(u), "users": users})
}

// LeadHome serves the employees a lead can assign.
// GET /lead and GET /lead/team.
func (h *PageHandlers) LeadHome(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireRole(w, r, domainauth.RoleLead)
	if !ok {
		return
	}
	team, err := h.Profiles.Team(r.Context(), u)
	if err != nil {
		h.backendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"page": "lead", "viewer": viewerOf(u), "team": team})
}

// requireAuth returns the signed-in user or redirects to the login page.
// A session whose role cannot be resolved is cleared.
func (h *PageHandlers) requireAuth(w http.ResponseWriter, r *http.Request) (domainauth.CurrentUser, bool) {
	u, res := currentUser(r, h.Resolver)
	switch {
	case res.Status == domainauth.SessionExpired:
		h.Cookies.Clear(w, r)
		redirect(w, r, domainauth.PathInvalidToken)
		return domainauth.CurrentUser{}, false
	case !u.IsAuthenticated():
		if res.ShouldClear() {
			h.Cookies.Clear(w, r)
		}
		redirect(w, r, domainauth.PathRoot)
		return domainauth.CurrentUser{}, false
	case !u.Role.Known():
		h.Cookies.Clear(w, r)
		redirect(w, r, domainauth.PathRoot)
		return domainauth.CurrentUser{}, false
	}
	return u, true
}

func (h *PageHandlers) requireRole(w http.ResponseWriter, r *http.Request, role domainauth.Role) (domainauth.CurrentUser, bool) {
	u, ok := h.requireAuth(w, r)
	if !ok {
		return u, false
	}
	if u.Role != role {
		redirect(w, r, domainauth.RoleHome(u))
		return u, false
	}
	return u, true
}

// backendFailure answers a failed critical read. A backend 401 means the token
// was revoked upstream, so the session is dropped like an expired one.
func (h *PageHandlers) backendFailure(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsBackendStatus(err) && apperrors.HTTPStatus(err) == http.StatusUnauthorized {
		h.logger().InfoContext(r.Context(), "backend rejected session token", "path", r.URL.Path)
		h.Cookies.Clear(w, r)
		redirect(w, r, domainauth.PathInvalidToken)
		return
	}
	h.logger().WarnContext(r.Context(), "page data unavailable",
		"path", r.URL.Path,
		"error_code", string(apperrors.GetCode(err)),
		"error", err)
	WriteAppError(w, err)
}
