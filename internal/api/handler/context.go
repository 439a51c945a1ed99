package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/api/middleware"
	"github.com/solarops/installation-tracker/internal/core/domain"
)

// callerIdentity fails fast when the Auth middleware did not run or the
// token carried neither an id nor a username.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.Identity(c)
	if !ok || id.IsAnonymous() {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}
	return id, nil
}
