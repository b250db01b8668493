package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/internal/common/middlewares"
	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/internal/dashboard/services"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

type DashboardController struct {
	Pool *services.ResolverPool
	Loc  *time.Location
}

func NewDashboardController(pool *services.ResolverPool, loc *time.Location) *DashboardController {
	return &DashboardController{Pool: pool, Loc: loc}
}

// GetAppointmentBreakdown handles GET /api/dashboard/appointments/breakdown?start=YYYY-MM-DD&end=YYYY-MM-DD
func (dc *DashboardController) GetAppointmentBreakdown(c echo.Context) error {
	var rng models.DateRange
	if err := c.Bind(&rng); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid query parameters",
			"data":    nil,
		})
	}
	if _, _, err := docstore.Bounds(rng.Start, rng.End, dc.Loc); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "start and end must be YYYY-MM-DD: " + err.Error(),
			"data":    nil,
		})
	}

	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		return missingClaims(c)
	}
	out := dc.Pool.For(claims.Username).Resolve(c.Request().Context(), rng)
	if out.Cancelled {
		return c.JSON(http.StatusRequestTimeout, map[string]interface{}{
			"status":  http.StatusRequestTimeout,
			"message": "Request cancelled before the breakdown finished",
			"data":    out,
		})
	}
	if out.Superseded {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"status":  http.StatusConflict,
			"message": "Superseded by a newer breakdown request",
			"data":    out,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Appointment breakdown retrieved",
		"data":    out,
	})
}

// GetLatestBreakdown handles GET /api/dashboard/appointments/breakdown/latest
func (dc *DashboardController) GetLatestBreakdown(c echo.Context) error {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		return missingClaims(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Latest appointment breakdown",
		"data":    dc.Pool.For(claims.Username).Latest(),
	})
}

func missingClaims(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": "Missing or invalid JWT claims",
		"data":    nil,
	})
}
