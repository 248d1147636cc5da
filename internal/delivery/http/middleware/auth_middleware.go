package middleware

import (
	"strings"

	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	contextKeyUserID   = "userID"
	contextKeyUsername = "username"
)

// AuthMiddleware validates bearer access tokens.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate rejects the request with ErrTokenInvalid unless it carries a valid
// "Authorization: Bearer <jwt>" header, then exposes the subject to handlers.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "missing bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
		}

		userID, err := claims.UserID()
		if err != nil {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "invalid subject")
		}

		c.Set(contextKeyUserID, userID)
		c.Set(contextKeyUsername, claims.Username)

		return next(c)
	}
}

// GetUserID returns the authenticated user's ID set by Authenticate.
func GetUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(contextKeyUserID).(uint64)

	return id, ok
}
