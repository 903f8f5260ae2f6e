package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxdesk/rxdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/analytics", auth.RequireRole("doctor"))
	g.GET("", h.GetSummary)
	g.GET("/hotspots", h.GetHotspots)
}

func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute analytics").SetInternal(err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) GetHotspots(c echo.Context) error {
	return c.JSON(http.StatusOK, Hotspots())
}
