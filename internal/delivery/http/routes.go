package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	if cfg.RateLimit.PerIP > 0 && cfg.RateLimit.Window > 0 {
		api.Use(NewRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Window).Middleware())
	}
	{
		api.GET("/products", handler.SearchProducts)
		api.POST("/analyze", handler.Analyze)

		cacheRoutes := api.Group("/cache")
		{
			cacheRoutes.POST("/clear", handler.ClearCache)
			cacheRoutes.GET("/test", handler.TestCache)
		}
	}

	return router
}
