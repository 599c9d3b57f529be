package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/zephir/path-explorer/internal/adapters/authroles"
	"github.com/zephir/path-explorer/internal/adapters/jwtcodec"
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/mocks"
	"github.com/zephir/path-explorer/internal/ports"
	"github.com/zephir/path-explorer/internal/testutil"
)

func newTestAuthService(backend ports.BackendAPI, cache ports.Cache) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Backend: backend,
		Decoder: jwtcodec.New(jwtcodec.Config{Secret: []byte(testutil.TestSecret)}),
		Roles:   authroles.StaticRoleMapper{},
		Cache:   cache,
		Now:     testutil.FixedTimeFunc(testNow),
	})
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackendAPI(ctrl)
	svc := newTestAuthService(backend, nil)

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"no email", LoginInput{Password: "secret"}},
		{"blank email", LoginInput{Email: "   ", Password: "secret"}},
		{"no password", LoginInput{Email: "ana@zephir.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsMissingCredentials(err))
		})
	}
}

func TestAuthService_Login_OversizedCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestAuthService(mocks.NewMockBackendAPI(ctrl), nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@zephir.test", Password: strings.Repeat("x", 2000)})
	require.Error(t, err)
	assert.False(t, apperrors.IsMissingCredentials(err))
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackendAPI(ctrl)
	exp := testNow.Add(24 * time.Hour)
	token := testutil.EmployeeToken(t, "42", exp)

	backend.EXPECT().
		Login(gomock.Any(), ports.LoginInput{Email: "ana@zephir.test", Password: "pw"}).
		Return(ports.LoginResult{
			Token:   token,
			User:    ports.BackendUser{ID: "42", Email: "ana@zephir.test", UserType: "employee"},
			Message: "Login exitoso",
		}, nil)

	res, err := newTestAuthService(backend, nil).Login(context.Background(), LoginInput{
		Email:      " ana@zephir.test ",
		Password:   "pw",
		RememberMe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.CurrentUser{UserID: "42", Role: domainauth.RoleEmployee, Token: token}, res.User)
	assert.Equal(t, "/42/dashboard", res.RedirectTo)
	assert.True(t, res.RememberMe)
	assert.True(t, exp.Truncate(time.Second).Equal(res.ExpiresAt))
	assert.Equal(t, "Login exitoso", res.Message)
}

func TestAuthService_Login_RoleAndIDFallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackendAPI(ctrl)
	token := testutil.SignToken(t, testutil.TokenSpec{UserID: "9", RoleID: 2, ExpiresAt: testNow.Add(time.Hour)})

	backend.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(ports.LoginResult{Token: token, User: ports.BackendUser{UserType: "bogus"}}, nil)

	res, err := newTestAuthService(backend, nil).Login(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleLead, res.User.Role)
	assert.Equal(t, "9", res.User.UserID)
	assert.Equal(t, domainauth.PathLeadHome, res.RedirectTo)
	assert.Equal(t, "login successful", res.Message)
}

func TestAuthService_Login_Failures(t *testing.T) {
	expired := testutil.EmployeeToken(t, "1", testNow.Add(-time.Hour))
	roleless := testutil.SignToken(t, testutil.TokenSpec{UserID: "1", ExpiresAt: testNow.Add(time.Hour)})

	tests := []struct {
		name    string
		result  ports.LoginResult
		err     error
		checkFn func(error) bool
	}{
		{
			name:    "backend rejects credentials",
			err:     apperrors.BackendStatus(http.StatusUnauthorized, "Credenciales inválidas"),
			checkFn: apperrors.IsBackendStatus,
		},
		{
			name:    "backend unreachable",
			err:     apperrors.BackendUnreachable(errors.New("dial tcp: refused")),
			checkFn: apperrors.IsBackendUnreachable,
		},
		{
			name:    "no token",
			result:  ports.LoginResult{User: ports.BackendUser{ID: "1"}},
			checkFn: func(err error) bool { return apperrors.GetCode(err) == apperrors.ErrCodeInternal },
		},
		{
			name:    "malformed token",
			result:  ports.LoginResult{Token: "nope"},
			checkFn: apperrors.IsMalformedToken,
		},
		{
			name:    "expired token",
			result:  ports.LoginResult{Token: expired},
			checkFn: apperrors.IsExpiredToken,
		},
		{
			name:    "unknown role",
			result:  ports.LoginResult{Token: roleless, User: ports.BackendUser{UserType: "unknown"}},
			checkFn: func(err error) bool { return apperrors.GetCode(err) == apperrors.ErrCodeUnknownRole },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			backend := mocks.NewMockBackendAPI(ctrl)
			backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(tt.result, tt.err)

			res, err := newTestAuthService(backend, nil).Login(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, tt.checkFn(err), "unexpected error %v", err)
		})
	}
}

func TestAuthService_Logout_EvictsUserCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().DeletePrefix(gomock.Any(), "pe:u:42:").Return(3, nil)

	svc := newTestAuthService(mocks.NewMockBackendAPI(ctrl), cache)
	svc.Logout(context.Background(), domainauth.CurrentUser{UserID: "42", Role: domainauth.RoleEmployee, Token: "t"})
}

func TestAuthService_Logout_CacheErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().DeletePrefix(gomock.Any(), gomock.Any()).Return(0, errors.New("redis down"))

	svc := newTestAuthService(mocks.NewMockBackendAPI(ctrl), cache)
	assert.NotPanics(t, func() {
		svc.Logout(context.Background(), domainauth.CurrentUser{UserID: "42"})
	})
}

func TestAuthService_Logout_NoUserOrCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	// No expectations: an anonymous logout must not touch the cache.
	newTestAuthService(mocks.NewMockBackendAPI(ctrl), cache).Logout(context.Background(), domainauth.CurrentUser{})
	newTestAuthService(mocks.NewMockBackendAPI(ctrl), nil).Logout(context.Background(), domainauth.CurrentUser{UserID: "1"})
}
