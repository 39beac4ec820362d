package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// LoginConfig holds the admin credential the login endpoint checks against.
// PasswordHash is a bcrypt hash; an empty hash disables login entirely.
type LoginConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    []byte
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginHandler exchanges the admin credential for a bearer token.
func LoginHandler(cfg LoginConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cfg.PasswordHash == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "login is not configured")
		}

		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		if req.Username != cfg.Username {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(req.Password)); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}

		token, err := IssueToken(cfg.JWTSecret, req.Username)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "issue token")
		}
		return c.JSON(http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
