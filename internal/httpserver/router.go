package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/gym_site/internal/config"
	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/middleware/auth"
	"github.com/Skotchmaster/gym_site/internal/middleware/ratelimit"
)

const (
	jsonBodyLimit    = "64K"
	contentBodyLimit = "2M"
	uploadOverhead   = 1 << 20
)

type RateLimits struct {
	Login      config.RateLimit
	AdminLogin config.RateLimit
	Register   config.RateLimit
	Contact    config.RateLimit
	Upload     config.RateLimit
}

type Deps struct {
	AuthHandler    *AuthHTTP
	ContentHandler *ContentHTTP
	ContactHandler *ContactHTTP
	MediaHandler   *MediaHTTP
	SearchHandler  *SearchHTTP

	Guard      *auth.Guard
	Limiter    *ratelimit.Limiter
	RateLimits RateLimits

	// IPExtractor resolves client addresses for rate limiting. Nil means the
	// peer address.
	IPExtractor echo.IPExtractor

	// MaxUploadSize bounds the multipart body of an upload request.
	MaxUploadSize int64
	Ready         func(ctx context.Context) error
}

func (d *Deps) limit(purpose string, rl config.RateLimit) echo.MiddlewareFunc {
	if d.Limiter == nil || rl.Max <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return ratelimit.Middleware(d.Limiter, purpose, rl.Max, rl.Window)
}

func Register(e *echo.Echo, d *Deps) {
	e.IPExtractor = d.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	jsonLimit := middleware.BodyLimit(jsonBodyLimit)
	api := e.Group("/api")

	authGroup := api.Group("/auth", jsonLimit)
	authGroup.POST("/register", d.AuthHandler.Register, d.limit("register", d.RateLimits.Register))
	authGroup.POST("/login", d.AuthHandler.Login, d.limit("login", d.RateLimits.Login))
	authGroup.GET("/me", d.AuthHandler.Me, d.Guard.Authenticated)
	authGroup.PATCH("/me", d.AuthHandler.PatchMe, d.Guard.Authenticated)

	api.GET("/content", d.ContentHandler.Get)
	api.PUT("/content/:type", d.ContentHandler.Save, middleware.BodyLimit(contentBodyLimit), d.Guard.AdminOnly)

	api.POST("/contact", d.ContactHandler.Submit, jsonLimit, d.limit("contact", d.RateLimits.Contact))

	api.GET("/search", d.SearchHandler.Search)

	api.POST("/admin/login", d.AuthHandler.AdminLogin, jsonLimit, d.limit("admin-login", d.RateLimits.AdminLogin))

	admin := api.Group("/admin", d.Guard.AdminOnly)
	admin.PATCH("/users/:id", d.AuthHandler.PatchUser, jsonLimit)
	admin.GET("/contact", d.ContactHandler.List)
	admin.POST("/upload", d.MediaHandler.Upload,
		middleware.BodyLimit(strconv.FormatInt(d.MaxUploadSize+uploadOverhead, 10)),
		d.limit("upload", d.RateLimits.Upload),
	)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx := c.Request().Context()
	if err := d.Ready(ctx); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
	}
	return c.NoContent(http.StatusOK)
}
