package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/api/metrics"
	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

// HeaderIdempotencyKey marks a bulk upload so a retry is not applied twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// InstallationHandler handles HTTP requests for installation records. All
// routes run behind the Auth middleware and act on the caller's partition.
type InstallationHandler struct {
	service ports.InstallationService
}

func NewInstallationHandler(service ports.InstallationService) *InstallationHandler {
	return &InstallationHandler{service: service}
}

func bindBody(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return nil
}

// List handles GET /api/installations.
//
// @Summary      List installations
// @Tags         installations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Installation
// @Failure      401  {object}  ErrorResponse
// @Router       /api/installations [get]
func (h *InstallationHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Installation{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/installations/:id.
//
// @Summary      Get an installation
// @Tags         installations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Installation id"
// @Success      200  {object}  domain.Installation
// @Failure      404  {object}  ErrorResponse
// @Router       /api/installations/{id} [get]
func (h *InstallationHandler) Get(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	inst, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inst)
}

// Create handles POST /api/installations.
//
// @Summary      Create an installation
// @Tags         installations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      installationRequest  true  "Installation"
// @Success      201   {object}  domain.Installation
// @Failure      400   {object}  ErrorResponse
// @Router       /api/installations [post]
func (h *InstallationHandler) Create(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req installationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	inst, err := h.service.Create(c.Request().Context(), caller, req.toInput())
	if err != nil {
		return err
	}

	metrics.InstallationsCreatedTotal.WithLabelValues("single").Inc()
	return c.JSON(http.StatusCreated, inst)
}

// CreateBulk handles POST /api/installations/bulk. The batch is applied only
// when every row is valid.
//
// @Summary      Bulk create installations
// @Tags         installations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string       false  "Retry key for this batch"
// @Param        body             body      bulkRequest  true   "Rows to import"
// @Success      201              {object}  bulkResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Router       /api/installations/bulk [post]
func (h *InstallationHandler) CreateBulk(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req bulkRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	importKey := c.Request().Header.Get(HeaderIdempotencyKey)
	res, err := h.service.CreateBulk(c.Request().Context(), caller, req.toInputs(), importKey)
	if err != nil {
		var bulkErr *domain.BulkValidationError
		if errors.As(err, &bulkErr) {
			metrics.BulkRowsRejectedTotal.Add(float64(len(bulkErr.Failures)))
		}
		return err
	}

	metrics.InstallationsCreatedTotal.WithLabelValues("bulk").Add(float64(res.Added))
	return c.JSON(http.StatusCreated, bulkResponse{Added: res.Added, Installations: res.Installations})
}

// Update handles PUT /api/installations/:id.
//
// @Summary      Update an installation
// @Tags         installations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Installation id"
// @Param        body  body      installationRequest  true  "Installation"
// @Success      200   {object}  domain.Installation
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/installations/{id} [put]
func (h *InstallationHandler) Update(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req installationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	inst, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inst)
}

// Delete handles DELETE /api/installations/:id.
//
// @Summary      Delete an installation
// @Tags         installations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Installation id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/installations/{id} [delete]
func (h *InstallationHandler) Delete(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Installation deleted successfully"})
}
