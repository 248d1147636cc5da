package middleware

import (
	"crypto/subtle"
	"log/slog"

	"usersvc/config"
	deliverycontext "usersvc/internal/delivery/context"
	domainerrors "usersvc/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// AdminMiddleware guards destructive administrative routes.
type AdminMiddleware struct {
	enabled bool
	token   []byte
	header  string
	logger  *slog.Logger
}

// NewAdminMiddleware is the constructor for AdminMiddleware.
func NewAdminMiddleware(cfg *config.Config, logger *slog.Logger) *AdminMiddleware {
	m := &AdminMiddleware{logger: logger}
	if cfg.Admin != nil {
		m.enabled = cfg.Admin.Enabled && cfg.Admin.Token != ""
		m.token = []byte(cfg.Admin.Token)
		m.header = cfg.Admin.Header()
	}

	return m
}

// RequireAdmin answers ErrForbidden unless admin routes are enabled and the request
// presents the configured token.
func (m *AdminMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.enabled {
			return domainerrors.ErrForbidden
		}

		presented := []byte(c.Request().Header.Get(m.header))
		if subtle.ConstantTimeCompare(presented, m.token) != 1 {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Warn("Rejected admin request", slog.String("path", c.Request().URL.Path))

			return domainerrors.ErrForbidden
		}

		return next(c)
	}
}
