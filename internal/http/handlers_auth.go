package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/observability/metrics"
	"github.com/zephir/path-explorer/internal/observability/statsd"
	"github.com/zephir/path-explorer/internal/service"
)

// AuthService defines the auth operations the handlers need.
type AuthService interface {
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, user domainauth.CurrentUser)
}

// AuthHandlers provides HTTP handlers for login, logout and the session accessor.
type AuthHandlers struct {
	Svc      AuthService
	Resolver SessionResolver
	Cookies  *SessionCookies
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type loginResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
	UserID     string `json:"userId"`
	UserType   string `json:"userType"`
}

// Login authenticates against the backend and stores the session cookies.
// POST /auth/login with a form or a JSON body.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res, err := h.Svc.Login(r.Context(), in)
	m := metrics.LoginMetric{Duration: time.Since(start), Err: err}
	if res != nil {
		m.Role = res.User.Role
	}
	metrics.EmitLogin(h.Metrics, m)

	if err != nil {
		h.logger().WarnContext(r.Context(), "login failed",
			"error_code", string(apperrors.GetCode(err)),
			"error", err)
		WriteAppError(w, err)
		return
	}

	h.Cookies.Set(w, r, SessionParams{User: res.User, RememberMe: res.RememberMe})
	h.logger().InfoContext(r.Context(), "login succeeded",
		"user_id", res.User.UserID,
		"role", string(res.User.Role),
		"remember_me", res.RememberMe)

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, loginResponse{
			Success:    true,
			Message:    res.Message,
			RedirectTo: res.RedirectTo,
			UserID:     res.User.UserID,
			UserType:   string(res.User.Role),
		})
		return
	}
	http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (service.LoginInput, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if !DecodeJSON(w, r, &req) {
			return service.LoginInput{}, false
		}
		return service.LoginInput{Email: req.Email, Password: req.Password, RememberMe: req.RememberMe}, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return service.LoginInput{}, false
	}
	return service.LoginInput{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		RememberMe: formBool(r.PostFormValue("remember_me")),
	}, true
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserType      string `json:"userType,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// Session reports who the cookies belong to. Invalid sessions are cleared.
// GET /auth/api.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	res := h.Resolver.Resolve(requestCookies{r})
	if res.Status != domainauth.SessionValid || !res.User.Role.Known() {
		if res.Status != domainauth.SessionNone || hasSessionCookies(r) {
			h.Cookies.Clear(w, r)
		}
		WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		UserType:      string(res.User.Role),
		UserID:        res.User.UserID,
	})
}

// EndSession is the logout side channel used by the client session hook.
// DELETE /auth/api.
func (h *AuthHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles the logout form.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]any{"success": true, "redirect_to": domainauth.PathRoot})
		return
	}
	redirect(w, r, domainauth.PathRoot)
}

// LogoutRedirect clears the session and sends the browser to the login page.
// GET /api/auth/logout.
func (h *AuthHandlers) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	http.Redirect(w, r, domainauth.PathRoot, http.StatusSeeOther)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r, h.Resolver)
	// Cookies are cleared before any server-side cleanup runs.
	h.Cookies.Clear(w, r)
	h.Svc.Logout(r.Context(), user)
	metrics.EmitLogout(h.Metrics, user.IsAuthenticated())
}

type sessionActionRequest struct {
	Action string `json:"action"`
}

const actionClearCookies = "clear-cookies"

// SessionAction runs a named session action. Only "clear-cookies" exists.
// POST /auth/api.
func (h *AuthHandlers) SessionAction(w http.ResponseWriter, r *http.Request) {
	var req sessionActionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Action != actionClearCookies {
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid_action",
			"message": "Invalid action",
		})
		return
	}
	h.Cookies.Clear(w, r)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClearCookies deletes the session cookies. The login page calls it after an
// invalidToken redirect.
// GET /api/auth/clear-cookies and GET /auth/clear-cookies.
func (h *AuthHandlers) ClearCookies(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w, r)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func hasSessionCookies(r *http.Request) bool {
	jar := requestCookies{r}
	for _, name := range domainauth.SessionCookieNames() {
		if _, ok := jar.Get(name); ok {
			return true
		}
	}
	return false
}
