package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/search"
	"github.com/Skotchmaster/gym_site/internal/transport"
	"github.com/Skotchmaster/gym_site/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []search.Hit, error)
}

type SearchHTTP struct {
	Svc Searcher
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	if h == nil || h.Svc == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, hits, err := h.Svc.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_error", "status", 500, "reason", "search backend error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": hits,
		"meta": transport.PageMeta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: util.TotalPages(total, size),
			HasPrev:    page > 1,
			HasNext:    int64(from+size) < total,
		},
	})
}
