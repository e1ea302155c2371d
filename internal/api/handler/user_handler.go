package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animehub/internal/api/dto"
	"animehub/internal/api/middleware"
	"animehub/internal/api/models"
	"animehub/internal/api/repository"
	"animehub/internal/api/service"

	"github.com/gin-gonic/gin"
)

const mutationTimeout = 5 * time.Second

// UserHandler exposes the list-mutation, profile and search endpoints.
type UserHandler struct {
	lists       service.ListService
	profiles    service.ProfileService
	authService service.AuthService
	logger      *slog.Logger
	verboseErrs bool // full storage errors in responses outside production
}

func NewUserHandler(lists service.ListService, profiles service.ProfileService, authService service.AuthService, logger *slog.Logger, verboseErrs bool) *UserHandler {
	return &UserHandler{
		lists:       lists,
		profiles:    profiles,
		authService: authService,
		logger:      logger,
		verboseErrs: verboseErrs,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	authed := rg.Group("", middleware.AuthMiddleware(h.authService))

	authed.POST("/favorites", h.AddFavorite)
	authed.DELETE("/favorites/:mal_id", h.RemoveFavorite)
	authed.POST("/genres", h.ToggleGenre)
	authed.POST("/genre-anime", h.AddGenreAnime)
	authed.DELETE("/genre-anime/:genre_id/:mal_id", h.RemoveGenreAnime)
	authed.POST("/watchlist", h.SetWatchStatus)
	authed.DELETE("/watchlist/:category/:mal_id", h.RemoveFromWatchList)
	authed.POST("/top10", h.AddTop10)
	authed.PUT("/top10/:list_type/:mal_id", h.ReorderTop10)
	authed.DELETE("/top10/:list_type/:mal_id", h.RemoveTop10)
	authed.PUT("/privacy", h.UpdatePrivacy)
	authed.GET("/search", h.SearchUsers)

	// Profile is viewable anonymously, privacy flags decide what is shown
	rg.GET("/profile/:user_id", middleware.OptionalAuth(h.authService), h.Profile)
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	var req dto.CatalogItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	favorites, err := h.lists.AddFavorite(ctx, c.GetString("userID"), req.ToModel())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	malID, ok := h.malIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	favorites, err := h.lists.RemoveFavorite(ctx, c.GetString("userID"), malID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *UserHandler) ToggleGenre(c *gin.Context) {
	var req dto.ToggleGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	genres, err := h.lists.ToggleFavoriteGenre(ctx, c.GetString("userID"), models.GenreRef{MalID: req.MalID, Name: req.Name})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *UserHandler) AddGenreAnime(c *gin.Context) {
	var req dto.GenreAnimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	index, err := h.lists.AddGenreAnime(ctx, c.GetString("userID"), req.GenreID, req.Anime.ToModel())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, index)
}

func (h *UserHandler) RemoveGenreAnime(c *gin.Context) {
	genreID := c.Param("genre_id")
	malID, ok := h.malIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	index, err := h.lists.RemoveGenreAnime(ctx, c.GetString("userID"), genreID, malID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, index)
}

func (h *UserHandler) SetWatchStatus(c *gin.Context) {
	var req dto.WatchListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	watchList, err := h.lists.SetWatchStatus(ctx, c.GetString("userID"), req.Anime.ToModel(), req.Category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, watchList)
}

func (h *UserHandler) RemoveFromWatchList(c *gin.Context) {
	category := c.Param("category")
	malID, ok := h.malIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	watchList, err := h.lists.RemoveFromWatchList(ctx, c.GetString("userID"), category, malID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, watchList)
}

func (h *UserHandler) AddTop10(c *gin.Context) {
	var req dto.Top10Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	partition, err := h.lists.AddTop10(ctx, c.GetString("userID"), req.Item.ToModel(), req.Rank, req.ListType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, partition)
}

func (h *UserHandler) ReorderTop10(c *gin.Context) {
	listType := c.Param("list_type")
	malID, ok := h.malIDParam(c)
	if !ok {
		return
	}

	var req dto.Top10ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	partition, err := h.lists.ReorderTop10(ctx, c.GetString("userID"), malID, req.Rank, listType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, partition)
}

func (h *UserHandler) RemoveTop10(c *gin.Context) {
	listType := c.Param("list_type")
	malID, ok := h.malIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	partition, err := h.lists.RemoveTop10(ctx, c.GetString("userID"), malID, listType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, partition)
}

func (h *UserHandler) UpdatePrivacy(c *gin.Context) {
	var req dto.PrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	privacy, err := h.lists.UpdatePrivacy(ctx, c.GetString("userID"), req.ListsPublic, req.FavoritesPublic, req.Top10Public)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, privacy)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	results, err := h.profiles.SearchUsers(ctx, query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Profile returns the full account for the owner, the privacy-projected
// variant for everyone else.
func (h *UserHandler) Profile(c *gin.Context) {
	targetID := c.Param("user_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	user, err := h.profiles.GetUser(ctx, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	isOwner := c.GetString("userID") == user.ID
	c.JSON(http.StatusOK, dto.NewProfileResponse(user, isOwner))
}

func (h *UserHandler) malIDParam(c *gin.Context) (int64, bool) {
	malID, err := strconv.ParseInt(c.Param("mal_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mal_id"})
		return 0, false
	}
	return malID, true
}

// writeError maps service errors onto the response taxonomy. Storage failures
// stay terse for clients and are logged with full detail outside production.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, models.ErrNotInList):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in list"})
	case errors.Is(err, models.ErrInvalidCategory), errors.Is(err, models.ErrInvalidListType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRankTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "rank already taken"})
	case errors.Is(err, repository.ErrStaleAccount):
		c.JSON(http.StatusConflict, gin.H{"error": "account was modified concurrently, retry"})
	default:
		if h.verboseErrs {
			h.logger.Error("list mutation failed", "path", c.FullPath(), "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
