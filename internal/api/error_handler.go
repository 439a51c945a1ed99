package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/solarops/installation-tracker/internal/api/handler"
	"github.com/solarops/installation-tracker/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Renders {"error": "<message>"}, plus "failures" for rejected batches.
//   - Hides unexpected error text in production.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c, production)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, production bool) (int, handler.ErrorResponse) {
	var bulkErr *domain.BulkValidationError
	if errors.As(err, &bulkErr) {
		return http.StatusBadRequest, handler.ErrorResponse{Error: bulkErr.Error(), Failures: bulkErr.Failures}
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, handler.ErrorResponse{Error: valErr.Error()}
	}

	// Unknown paths and methods both read as a missing route.
	if err == echo.ErrNotFound || err == echo.ErrMethodNotAllowed {
		return http.StatusNotFound, handler.ErrorResponse{Error: "Route not found"}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError && he.Internal != nil {
			log.Error().Err(he.Internal).Str("path", c.Path()).Msg("request failed")
		}
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrInstallationNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "Installation not found"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "Invalid credentials"}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "Invalid or expired token"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, handler.ErrorResponse{Error: "Username already exists"}
	case errors.Is(err, domain.ErrDuplicateImport):
		return http.StatusConflict, handler.ErrorResponse{Error: "Bulk import already processed"}
	case errors.Is(err, domain.ErrAuthNotConfigured):
		return http.StatusInternalServerError, handler.ErrorResponse{Error: "Server is missing JWT configuration"}
	case errors.Is(err, domain.ErrAdminKeyNotConfigured):
		return http.StatusInternalServerError, handler.ErrorResponse{Error: "Admin API key is not configured"}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	if production {
		return http.StatusInternalServerError, handler.ErrorResponse{Error: "Internal server error"}
	}
	return http.StatusInternalServerError, handler.ErrorResponse{Error: err.Error()}
}
