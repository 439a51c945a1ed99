package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/api/metrics"
	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

const msgCredentialsRequired = "Username and password are required"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type userResponse struct {
	User domain.Identity `json:"user"`
}

type usersResponse struct {
	Users []domain.UserSummary `json:"users"`
}

// bindCredentials treats an unreadable body like an empty one.
func bindCredentials(c echo.Context) (credentialsRequest, error) {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, msgCredentialsRequired)
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, msgCredentialsRequired)
	}
	return req, nil
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: *user})
}

// CreateUser adds a file-backed user account.
//
// @Summary      Create a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     AdminKey
// @Param        body  body      credentialsRequest  true  "New user credentials"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/auth/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CreateUser(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: *user})
}

// ListUsers returns every account without password hashes.
//
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Security     AdminKey
// @Success      200  {object}  usersResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.UserSummary{}
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}
