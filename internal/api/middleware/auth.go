package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

// IdentityKey is the echo context key holding the authenticated domain.Identity.
const IdentityKey = "identity"

// Auth validates the bearer token and injects the caller identity into context.
func Auth(authn ports.TokenAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authn.Configured() {
				return domain.ErrAuthNotConfigured
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			_, token, _ := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			id, err := authn.Authenticate(token)
			if err != nil {
				if errors.Is(err, domain.ErrAuthNotConfigured) {
					return err
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(IdentityKey, *id)
			return next(c)
		}
	}
}

// Identity returns the caller set by Auth, if any.
func Identity(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
