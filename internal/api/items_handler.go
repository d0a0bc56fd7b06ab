package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/service"
	"github.com/campus-notice-collector/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ItemsHandler handles the record query endpoints
type ItemsHandler struct {
	services *service.Services
	timeout  time.Duration
	log      zerolog.Logger
}

// NewItemsHandler creates a new ItemsHandler
func NewItemsHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ItemsHandler {
	return &ItemsHandler{
		services: services,
		timeout:  cfg.Server.RequestTimeout,
		log:      log.With().Str("handler", "items").Logger(),
	}
}

// ListItems handles GET /items/:category?source=&category_filter=
func (h *ItemsHandler) ListItems(c *gin.Context) {
	v := validation.NewValidator()
	category := v.Category("category", c.Param("category"), true)
	q := service.ItemsQuery{
		Source:   v.Source("source", c.Query("source")),
		Category: v.Category("category_filter", c.Query("category_filter"), false),
	}
	if !h.valid(c, v) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	items, err := h.services.Query.ListItems(ctx, category, q)
	if err != nil {
		h.fail(c, err, "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Search handles GET /search?keyword=&source=&category=
func (h *ItemsHandler) Search(c *gin.Context) {
	v := validation.NewValidator()
	q := service.ItemsQuery{
		Keyword:  v.Required("keyword", c.Query("keyword")),
		Source:   v.Source("source", c.Query("source")),
		Category: v.Category("category", c.Query("category"), false),
	}
	if !h.valid(c, v) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	items, err := h.services.Query.Search(ctx, q)
	if err != nil {
		h.fail(c, err, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetItem handles GET /item/:category/:id?source=
// Reading an item counts as a view.
func (h *ItemsHandler) GetItem(c *gin.Context) {
	v := validation.NewValidator()
	category := v.Category("category", c.Param("category"), true)
	id := v.ID("id", c.Param("id"))
	source := v.SourceOr("source", c.Query("source"), models.SourceChat)
	if !h.valid(c, v) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	item, err := h.services.Query.GetItem(ctx, source, category, id)
	if err != nil {
		h.fail(c, err, "Failed to get item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// Favorite handles POST /favorite/:category/:id?source=
func (h *ItemsHandler) Favorite(c *gin.Context) {
	v := validation.NewValidator()
	category := v.Category("category", c.Param("category"), true)
	id := v.ID("id", c.Param("id"))
	source := v.SourceOr("source", c.Query("source"), models.SourceChat)
	if !h.valid(c, v) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	favorites, err := h.services.Query.Favorite(ctx, source, category, id)
	if err != nil {
		h.fail(c, err, "Failed to favorite item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// CategoryStats handles GET /category-stats
func (h *ItemsHandler) CategoryStats(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	stats, err := h.services.Query.CategoryStats(ctx)
	if err != nil {
		h.fail(c, err, "Failed to compute category stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": models.Categories,
		"stats":      stats,
	})
}

// CrawlRuns handles GET /crawl-runs?limit=
func (h *ItemsHandler) CrawlRuns(c *gin.Context) {
	v := validation.NewValidator()
	limit := v.Limit("limit", c.Query("limit"), 20, 100)
	if !h.valid(c, v) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()

	runs, err := h.services.Query.RecentCrawls(ctx, limit)
	if err != nil {
		h.fail(c, err, "Failed to list crawl runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

// valid writes a 400 response listing the validation errors, if any
func (h *ItemsHandler) valid(c *gin.Context, v *validation.Validator) bool {
	if err := v.Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"details": v.Errors(),
		})
		return false
	}
	return true
}

// fail maps service errors onto responses
func (h *ItemsHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, repository.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
