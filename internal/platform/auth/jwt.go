// Package auth provides JWT issuance and verification for the API.
// A single admin credential guards the surface; tokens are HS256 signed.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const UserKey contextKey = "user"

const tokenTTL = 24 * time.Hour

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// IssueToken signs a token for an authenticated user.
func IssueToken(secret []byte, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Middleware validates the bearer token on every request. Paths matched by
// skip are let through unauthenticated (health checks and the login route).
func Middleware(secret []byte, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), UserKey, claims.Username)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SkipPaths returns a skipper that bypasses auth for the given path prefixes.
func SkipPaths(prefixes ...string) func(c echo.Context) bool {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// UserFromContext returns the authenticated username, if any.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(UserKey).(string)
	return user
}
