package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hashurl/internal/config"
	"hashurl/internal/domain"
	"hashurl/pkg/logger"
)

const (
	serviceName    = "hashurl"
	serviceVersion = "1.0.0"
)

// NewRouter configures the Gin router with middleware and routes
func NewRouter(urlHandler *URLHandler, cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg))
	router.Use(SecurityHeadersMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))
	router.Use(TimeoutMiddleware(cfg.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Version:   serviceVersion,
			Timestamp: time.Now().UTC(),
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/shorten", urlHandler.ShortenURL)
		v1.GET("/urls", urlHandler.ListURLs)
		v1.GET("/urls/:code", urlHandler.GetURLInfo)
		v1.GET("/admin/audit", urlHandler.AuditLog)
	}

	// Counted redirect
	router.GET("/:code", urlHandler.RedirectURL)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "endpoint not found",
			Code:    http.StatusNotFound,
		})
	})

	return router
}
