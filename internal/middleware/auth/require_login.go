package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
)

func (g *Guard) Authenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := g.RequireAuth(c.Request())
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "reason", "missing or invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		setUserContext(c, u)
		return next(c)
	}
}
