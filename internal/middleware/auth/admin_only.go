package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
)

func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context())

		u, err := g.RequireAdmin(c.Request())
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				l.Warn("auth_failed", "status", 403, "reason", "admin access required")
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			l.Warn("auth_failed", "status", 401, "reason", "missing or invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		setUserContext(c, u)
		return next(c)
	}
}
