package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/klinik-dashboard/pkg/utils"
)

type ManagementController struct {
	Service   *services.ManagementService
	JWTSecret string
	TokenTTL  time.Duration
}

func NewManagementController(service *services.ManagementService, jwtSecret string, ttl time.Duration) *ManagementController {
	return &ManagementController{Service: service, JWTSecret: jwtSecret, TokenTTL: ttl}
}

type LoginManagementRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (mc *ManagementController) Login(c echo.Context) error {
	var req LoginManagementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload",
			"data":    nil,
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Username and Password are required",
			"data":    nil,
		})
	}

	m, err := mc.Service.AuthenticateManagement(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid username or password",
			"data":    nil,
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to authenticate: " + err.Error(),
			"data":    nil,
		})
	}

	token, err := utils.GenerateJWTToken(mc.JWTSecret, utils.Claims{
		IDManagement: m.ID,
		Username:     m.Username,
		Nama:         m.Nama,
		Role:         "Manajemen",
		Privileges:   []string{utils.PrivManageDashboard},
	}, time.Now().Add(mc.TokenTTL))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to generate token: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Login successful",
		"data": map[string]interface{}{
			"id":       m.ID,
			"nama":     m.Nama,
			"username": m.Username,
			"token":    token,
		},
	})
}
