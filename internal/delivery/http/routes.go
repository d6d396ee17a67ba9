package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prodscout/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/scrape", handler.Scrape)
		v1.POST("/scrape/wait", handler.ScrapeAndWait)
		v1.POST("/scrape/simple", handler.ScrapeSimple)
		v1.GET("/snapshot/:id", handler.GetSnapshot)
		v1.GET("/products/stats", handler.ProductStats)
		v1.POST("/recommendations", handler.Recommend)
		v1.GET("/stores/search", handler.SearchStores)
	}

	return router
}
