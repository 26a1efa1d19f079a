package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/service"
)

// RequireAdmin lets the request through only when the caller stored by
// AuthGuard is an administrator.  It must run after AuthGuard; without a
// caller the request is rejected as forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c.Request().Context())
			if !ok || !caller.IsAdmin {
				return service.ErrForbidden
			}
			return next(c)
		}
	}
}
