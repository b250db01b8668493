package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/internal/common/middlewares"
	"github.com/c14220110/klinik-dashboard/internal/dashboard/controllers"
	"github.com/c14220110/klinik-dashboard/pkg/utils"
)

// RegisterDashboardRoutes memasang endpoint dashboard di bawah grup api.
func RegisterDashboardRoutes(api *echo.Group, dc *controllers.DashboardController, jwtSecret string) {
	dashboard := api.Group("/dashboard",
		middlewares.JWTMiddleware(jwtSecret),
		middlewares.RequirePrivilege(utils.PrivManageDashboard))

	dashboard.GET("/appointments/breakdown", dc.GetAppointmentBreakdown)
	dashboard.GET("/appointments/breakdown/latest", dc.GetLatestBreakdown)
}
