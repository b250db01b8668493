package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/pkg/utils"
)

// ContextKeyClaims adalah key echo.Context tempat klaim JWT disimpan.
const ContextKeyClaims = "claims"

// JWTMiddleware memvalidasi header "Authorization: Bearer <token>". Untuk
// websocket, token juga boleh dikirim lewat query ?token=.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := c.QueryParam("token")
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return unauthorized(c, "Invalid authorization header")
				}
				tokenStr = parts[1]
			}
			if tokenStr == "" {
				return unauthorized(c, "Authorization header missing")
			}

			claims, err := utils.ValidateJWTToken(secret, tokenStr)
			if err != nil {
				return unauthorized(c, "Invalid token: "+err.Error())
			}
			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// ClaimsFrom mengambil klaim yang disimpan JWTMiddleware.
func ClaimsFrom(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*utils.Claims)
	return claims, ok && claims != nil
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": msg,
		"data":    nil,
	})
}
