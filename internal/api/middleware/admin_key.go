package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// HeaderAdminKey carries the shared secret for user management.
const HeaderAdminKey = "X-Admin-Key"

// AdminKey guards routes with a static shared secret. An empty key
// disables the guarded routes.
func AdminKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return domain.ErrAdminKeyNotConfigured
			}

			provided := c.Request().Header.Get(HeaderAdminKey)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
