package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"usersvc/config"
	"usersvc/internal/delivery/http/response"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/service"
	mockSvc "usersvc/internal/mocks/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()

	return echo.New().NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{
			name:        "validation keeps details",
			err:         domainerrors.ErrValidationFailed.WithDetails("email: must be a valid email address"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
			wantDetails: "email: must be a valid email address",
		},
		{
			name:       "wrapped not found",
			err:        errors.Wrap(domainerrors.ErrUserNotFound, "failed to find user by id"),
			wantStatus: http.StatusNotFound,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			name:       "unauthorized hides details",
			err:        domainerrors.ErrTokenInvalid.WithDetails("signature is invalid"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_INVALID",
		},
		{
			name:       "database error hides details",
			err:        domainerrors.NewDatabaseExecuteError(errors.New("pq: connection reset"), "failed to create user"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "DATABASE_EXECUTE_FAILED",
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "HTTP_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("secret internals"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	m := NewErrorMiddleware(discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(httptest.NewRequest(http.MethodGet, "/users/1", nil))

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.NotContains(t, rec.Body.String(), "secret internals")
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	tokenSvc.EXPECT().ValidateToken("good").Return(&service.Claims{
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
	}, nil)
	tokenSvc.EXPECT().ValidateToken("bad").Return(nil, jwt.ErrTokenSignatureInvalid)
	tokenSvc.EXPECT().ValidateToken("nosub").Return(&service.Claims{Username: "x"}, nil)

	m := NewAuthMiddleware(tokenSvc)

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer good")
		c, _ := newContext(req)

		var gotID uint64
		err := m.Authenticate(func(c echo.Context) error {
			gotID, _ = GetUserID(c)

			return nil
		})(c)

		require.NoError(t, err)
		assert.Equal(t, uint64(7), gotID)
	})

	for _, header := range []string{"", "Token good", "Bearer ", "Bearer bad", "Bearer nosub"} {
		t.Run("rejects "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			c, _ := newContext(req)

			err := m.Authenticate(func(echo.Context) error {
				t.Fatal("next must not run")

				return nil
			})(c)

			assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
		})
	}
}

func TestAdminMiddleware_RequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		admin   *config.AdminConfig
		token   string
		allowed bool
	}{
		{name: "no admin section", admin: nil, token: "t0k", allowed: false},
		{name: "disabled", admin: &config.AdminConfig{Enabled: false, Token: "t0k"}, token: "t0k", allowed: false},
		{name: "enabled without token", admin: &config.AdminConfig{Enabled: true}, token: "", allowed: false},
		{name: "wrong token", admin: &config.AdminConfig{Enabled: true, Token: "t0k"}, token: "nope", allowed: false},
		{name: "right token", admin: &config.AdminConfig{Enabled: true, Token: "t0k"}, token: "t0k", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAdminMiddleware(&config.Config{Admin: tt.admin}, discardLogger())

			req := httptest.NewRequest(http.MethodDelete, "/users", nil)
			if tt.token != "" {
				req.Header.Set("X-Admin-Token", tt.token)
			}
			c, _ := newContext(req)

			called := false
			err := m.RequireAdmin(func(echo.Context) error {
				called = true

				return nil
			})(c)

			assert.Equal(t, tt.allowed, called)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domainerrors.ErrForbidden)
			}
		})
	}
}
