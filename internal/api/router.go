package api

import (
	"context"
	"net/http"
	"time"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	itemsHandler := NewItemsHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(services.Health, cfg.Server.RequestTimeout))

	// Routes are served at the root and under /api for existing clients.
	for _, g := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		g.GET("/items/:category", itemsHandler.ListItems)
		g.GET("/search", itemsHandler.Search)
		g.GET("/item/:category/:id", itemsHandler.GetItem)
		g.POST("/favorite/:category/:id", itemsHandler.Favorite)
		g.GET("/category-stats", itemsHandler.CategoryStats)
		g.GET("/crawl-runs", itemsHandler.CrawlRuns)
	}

	if cfg.Ingest.ImageDir != "" {
		router.Static("/"+cfg.Ingest.ImagePrefix, cfg.Ingest.ImageDir)
	}

	return router
}

// healthCheck returns the health status with the state of each store.
// One store down is degraded; no usable store is 503.
func healthCheck(health service.HealthService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "campus-notice-collector",
		}
		if health == nil {
			c.JSON(http.StatusOK, body)
			return
		}

		ctx, cancel := contextWithTimeout(c, timeout)
		defer cancel()

		stores := health.Check(ctx)
		ok := 0
		for _, state := range stores {
			if state == service.StoreOK {
				ok++
			}
		}
		body["stores"] = stores

		switch {
		case ok == len(stores):
			c.JSON(http.StatusOK, body)
		case ok > 0:
			body["status"] = "degraded"
			c.JSON(http.StatusOK, body)
		default:
			body["status"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, body)
		}
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString("request_id")).
					Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
