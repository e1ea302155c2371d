package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"animehub/internal/catalog"

	"github.com/gin-gonic/gin"
)

const catalogTimeout = 15 * time.Second

// CatalogHandler is a read-only pass-through to the external catalog. It
// holds no state; upstream failures surface as 502 after the client's own
// retries are exhausted.
type CatalogHandler struct {
	client *catalog.Client
	logger *slog.Logger
}

func NewCatalogHandler(client *catalog.Client, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{client: client, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/anime/top", h.TopAnime)
	rg.GET("/manga/top", h.TopManga)
	rg.GET("/manhwa/top", h.TopManhwa)
	rg.GET("/anime/search", h.SearchAnime)
	rg.GET("/manga/search", h.SearchManga)
	rg.GET("/anime/:id", h.GetAnime)
	rg.GET("/manga/:id", h.GetManga)
	rg.GET("/anime/:id/recommendations", h.AnimeRecommendations)
	rg.GET("/genres/anime", h.AnimeGenres)
}

func (h *CatalogHandler) TopAnime(c *gin.Context) {
	h.proxyList(c, func(ctx context.Context) (*catalog.ItemList, error) {
		return h.client.TopAnime(ctx, pageParam(c), c.Query("filter"))
	})
}

func (h *CatalogHandler) TopManga(c *gin.Context) {
	h.proxyList(c, func(ctx context.Context) (*catalog.ItemList, error) {
		return h.client.TopManga(ctx, pageParam(c), c.Query("filter"))
	})
}

func (h *CatalogHandler) TopManhwa(c *gin.Context) {
	h.proxyList(c, func(ctx context.Context) (*catalog.ItemList, error) {
		return h.client.TopManhwa(ctx, pageParam(c))
	})
}

func (h *CatalogHandler) SearchAnime(c *gin.Context) {
	h.proxyList(c, func(ctx context.Context) (*catalog.ItemList, error) {
		return h.client.SearchAnime(ctx, c.Query("q"), pageParam(c), searchFilters(c))
	})
}

func (h *CatalogHandler) SearchManga(c *gin.Context) {
	h.proxyList(c, func(ctx context.Context) (*catalog.ItemList, error) {
		return h.client.SearchManga(ctx, c.Query("q"), pageParam(c), searchFilters(c))
	})
}

func (h *CatalogHandler) GetAnime(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	detail, err := h.client.GetAnimeByID(ctx, id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CatalogHandler) GetManga(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	detail, err := h.client.GetMangaByID(ctx, id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CatalogHandler) AnimeRecommendations(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	recs, err := h.client.GetAnimeRecommendations(ctx, id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *CatalogHandler) AnimeGenres(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	genres, err := h.client.AnimeGenres(ctx)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *CatalogHandler) proxyList(c *gin.Context, fetch func(context.Context) (*catalog.ItemList, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	list, err := fetch(ctx)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) upstreamError(c *gin.Context, err error) {
	h.logger.Warn("catalog request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
}

func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// searchFilters forwards the catalog's own filter vocabulary untouched.
func searchFilters(c *gin.Context) url.Values {
	filters := url.Values{}
	for _, key := range []string{"type", "status", "genres", "order_by", "sort", "rating"} {
		if v := c.Query(key); v != "" {
			filters.Set(key, v)
		}
	}
	return filters
}
