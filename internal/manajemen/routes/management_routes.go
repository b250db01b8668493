package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/internal/manajemen/controllers"
)

func RegisterManagementRoutes(api *echo.Group, mc *controllers.ManagementController) {
	management := api.Group("/management")
	management.POST("/login", mc.Login) // Tidak pakai JWT
}
