package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Privilege yang dikenal dashboard.
const (
	PrivManageDashboard = "manage_dashboard"
)

var ErrMissingSecret = errors.New("JWT secret key is missing")

// Claims terpadu dengan field flat untuk privileges.
type Claims struct {
	IDManagement string   `json:"id_management"`
	Username     string   `json:"username"`
	Nama         string   `json:"nama"`
	Role         string   `json:"role"`
	Privileges   []string `json:"privileges"`
	jwt.RegisteredClaims
}

// HasPrivilege reports whether the claims carry priv.
func (c *Claims) HasPrivilege(priv string) bool {
	for _, p := range c.Privileges {
		if p == priv {
			return true
		}
	}
	return false
}

// GenerateJWTToken membuat token JWT HS256 dengan masa berlaku sampai exp.
func GenerateJWTToken(secret string, claims Claims, exp time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Username,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWTToken memvalidasi token JWT dan mengembalikan klaim terpadu.
func ValidateJWTToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Pastikan metode signing benar
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
