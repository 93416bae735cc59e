package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/service"
)

type ContentHTTP struct {
	Svc *service.ContentService
}

// Get answers a bare object for singleton types, a bare array for collection
// types, and a type-to-payload map when no type is given.
func (h *ContentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	typ := c.QueryParam("type")
	l := logging.FromContext(ctx).With("handler", "content.get", "type", typ)

	if typ == "" {
		all, err := h.Svc.GetAll(ctx)
		if err != nil {
			return serviceError(l, "get_content_error", err)
		}
		return c.JSON(http.StatusOK, all)
	}

	payload, err := h.Svc.Get(ctx, typ)
	if err != nil {
		return serviceError(l, "get_content_error", err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

func (h *ContentHTTP) Save(c echo.Context) error {
	ctx := c.Request().Context()
	typ := c.Param("type")
	l := logging.FromContext(ctx).With("handler", "content.save", "type", typ)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		l.Warn("save_content_error", "status", 400, "reason", "cannot read body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	payload, err := h.Svc.Save(ctx, typ, body)
	if err != nil {
		return serviceError(l, "save_content_error", err)
	}

	l.Info("save_content_success")
	return c.JSONBlob(http.StatusOK, payload)
}
