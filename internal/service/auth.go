package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zephir/path-explorer/internal/adapters/jwtcodec"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend ports.BackendAPI
	Decoder ports.TokenDecoder
	Roles   ports.RoleMapper
	// Cache is optional; when set, cached backend reads of a user are evicted on logout.
	Cache  ports.Cache
	Now    func() time.Time
	Logger *slog.Logger
}

// AuthService orchestrates login and logout against the backend API.
// Cookie writes are left to the HTTP layer's session mutation helpers.
type AuthService struct {
	backend  ports.BackendAPI
	decoder  ports.TokenDecoder
	roles    ports.RoleMapper
	cache    ports.Cache
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		backend:  opts.Backend,
		decoder:  opts.Decoder,
		roles:    opts.Roles,
		cache:    opts.Cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
		logger:   logger,
	}
}

// LoginInput groups the login form fields.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// credentials is checked before any backend call.
type credentials struct {
	Email    string `validate:"required,max=254"`
	Password string `validate:"required,max=1024"`
}

// LoginResult contains everything needed to persist the new session.
type LoginResult struct {
	User       domainauth.CurrentUser
	Profile    ports.BackendUser
	ExpiresAt  time.Time
	RememberMe bool
	RedirectTo string
	Message    string
}

// Login validates credentials locally, authenticates against the backend and
// resolves the new session's user id and role.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if err := s.validate.Struct(credentials{Email: email, Password: in.Password}); err != nil {
		return nil, credentialsError(err)
	}

	res, err := s.backend.Login(ctx, ports.LoginInput{Email: email, Password: in.Password})
	if err != nil {
		return nil, fmt.Errorf("backend login: %w", err)
	}
	if res.Token == "" {
		return nil, apperrors.Internal("login response did not include a token")
	}

	claims, err := s.decoder.Decode(res.Token)
	if err != nil {
		return nil, fmt.Errorf("decode login token: %w", err)
	}
	if jwtcodec.IsExpired(claims, s.now()) {
		return nil, apperrors.ExpiredToken()
	}

	role := s.loginRole(res.User, claims)
	if !role.Known() {
		return nil, apperrors.UnknownRole()
	}

	userID := strings.TrimSpace(res.User.ID)
	if userID == "" {
		userID = claims.Subject
	}

	user := domainauth.CurrentUser{UserID: userID, Role: role, Token: res.Token}
	message := res.Message
	if message == "" {
		message = "login successful"
	}
	return &LoginResult{
		User:       user,
		Profile:    res.User,
		ExpiresAt:  claims.ExpiresAt,
		RememberMe: in.RememberMe,
		RedirectTo: domainauth.RoleHome(user),
		Message:    message,
	}, nil
}

func credentialsError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid credentials")
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.MissingCredentials("email and password are required")
		}
	}
	return apperrors.Validation("email or password is too long")
}

// loginRole prefers the role name in the login response, then the token.
func (s *AuthService) loginRole(u ports.BackendUser, claims domainauth.Claims) domainauth.Role {
	if role, ok := domainauth.ParseRole(u.UserType); ok && role.Known() {
		return role
	}
	return RoleFromClaims(claims, s.roles)
}

// Logout drops server-side state tied to the user. It never fails the logout itself;
// cookie clearing is the caller's job and must happen regardless.
func (s *AuthService) Logout(ctx context.Context, user domainauth.CurrentUser) {
	if s.cache == nil || user.UserID == "" {
		return
	}
	n, err := s.cache.DeletePrefix(ctx, userCachePrefix(user.UserID))
	if err != nil {
		s.logger.WarnContext(ctx, "evict cached reads on logout failed", "user_id", user.UserID, "error", err)
		return
	}
	s.logger.DebugContext(ctx, "evicted cached reads on logout", "user_id", user.UserID, "keys", n)
}
