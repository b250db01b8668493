package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/config"
	"github.com/c14220110/klinik-dashboard/internal/common/middlewares"
	dashboardControllers "github.com/c14220110/klinik-dashboard/internal/dashboard/controllers"
	dashboardModels "github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	dashboardRoutes "github.com/c14220110/klinik-dashboard/internal/dashboard/routes"
	dashboardServices "github.com/c14220110/klinik-dashboard/internal/dashboard/services"
	manajemenControllers "github.com/c14220110/klinik-dashboard/internal/manajemen/controllers"
	manajemenRoutes "github.com/c14220110/klinik-dashboard/internal/manajemen/routes"
	manajemenServices "github.com/c14220110/klinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
	"github.com/c14220110/klinik-dashboard/ws"
)

// Init menginisialisasi semua routes menggunakan Echo framework. Pool resolver
// dikembalikan agar bisa ditutup saat shutdown.
func Init(e *echo.Echo, store docstore.ReadWriter, hub *ws.Hub, cfg *config.Config, log *zap.Logger) *dashboardServices.ResolverPool {
	loc := cfg.Location()

	// Inisialisasi service
	managementService := manajemenServices.NewManagementService(store)
	breakdownService := dashboardServices.NewBreakdownService(store, loc, log.Named("breakdown"))
	pool := dashboardServices.NewResolverPool(breakdownService, func(user string, o dashboardModels.Outcome) {
		hub.Publish(user, o)
	})
	hub.OnIdle(func(user string) { pool.Release(user) })

	// Inisialisasi controller dengan service yang sesuai
	managementController := manajemenControllers.NewManagementController(managementService, cfg.JWTSecret, cfg.JWTTTL)
	dashboardController := dashboardControllers.NewDashboardController(pool, loc)

	// Grup API utama
	api := e.Group("/api")
	manajemenRoutes.RegisterManagementRoutes(api, managementController)
	dashboardRoutes.RegisterDashboardRoutes(api, dashboardController, cfg.JWTSecret)

	// WebSocket dashboard
	e.GET("/ws/dashboard", ws.ServeWS(hub), middlewares.JWTMiddleware(cfg.JWTSecret))

	return pool
}
