package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/media"
)

type MediaHTTP struct {
	Svc *media.Service
}

func (h *MediaHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.upload")

	if h == nil || h.Svc == nil {
		l.Warn("upload_error", "status", 503, "reason", "media storage not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "media uploads are not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "missing file field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "reason", "cannot open upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	defer f.Close()

	res, err := h.Svc.Upload(ctx, fh.Filename, fh.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrEmpty), errors.Is(err, media.ErrTooLarge):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
		}
	}

	return c.JSON(http.StatusOK, res)
}
