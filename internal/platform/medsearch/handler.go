package medsearch

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rxdesk/rxdesk/internal/platform/auth"
	"github.com/rxdesk/rxdesk/internal/platform/middleware"
)

// CacheTTL is how long identical searches are served from memory.
const CacheTTL = 5 * time.Minute

type Handler struct {
	client *Client
	cache  middleware.CacheStore
}

func NewHandler(client *Client, cache middleware.CacheStore) *Handler {
	return &Handler{client: client, cache: cache}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	mws := []echo.MiddlewareFunc{auth.RequireRole("doctor")}
	if h.cache != nil {
		mws = append(mws, middleware.ResponseCacheMiddleware(h.cache, CacheTTL))
	}
	api.GET("/medicines/search", h.Search, mws...)
}

// Search answers 200 even when RxTerms is down; that empty answer is not
// cached so the next keystroke retries upstream.
func (h *Handler) Search(c echo.Context) error {
	out, err := h.client.Lookup(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		middleware.SkipCache(c)
	}
	return c.JSON(http.StatusOK, out)
}
