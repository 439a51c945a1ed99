package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// TerritoryHandler serves the static utility territory table.
type TerritoryHandler struct{}

func NewTerritoryHandler() *TerritoryHandler {
	return &TerritoryHandler{}
}

type territoriesResponse struct {
	Territories []domain.Territory `json:"territories"`
	Default     domain.Territory   `json:"default"`
}

type resolveQuery struct {
	State string `query:"state" validate:"required_without=City"`
	City  string `query:"city"`
}

// List handles GET /api/territories.
//
// @Summary      List utility territories
// @Tags         territories
// @Produce      json
// @Success      200  {object}  territoriesResponse
// @Router       /api/territories [get]
func (h *TerritoryHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, territoriesResponse{Territories: domain.Territories, Default: domain.DefaultTerritory})
}

// Resolve handles GET /api/territories/resolve?state=&city=.
//
// @Summary      Resolve the territory of a location
// @Tags         territories
// @Produce      json
// @Param        state  query     string  false  "Two-letter state code"
// @Param        city   query     string  false  "City name"
// @Success      200    {object}  domain.Territory
// @Failure      400    {object}  ErrorResponse
// @Router       /api/territories/resolve [get]
func (h *TerritoryHandler) Resolve(c echo.Context) error {
	var q resolveQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query").SetInternal(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.ResolveTerritory(q.State, q.City))
}
