package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shelfscan/backend/config"
	"github.com/shelfscan/backend/internal/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoints
	router.GET("/health", handler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := router.Group("/api")
	api.Use(CredentialMiddleware())
	{
		api.GET("/health", handler.APIHealth)
		api.POST("/vision", handler.Vision)
		api.POST("/detect-type", handler.DetectType)

		// API v1 routes
		v1 := api.Group("/v1")
		{
			scans := v1.Group("/scans")
			{
				scans.POST("", handler.CreateScan)
				scans.GET("/:id", handler.GetScan)
				scans.DELETE("/:id", handler.DeleteScan)
				scans.GET("/:id/export", handler.ExportScan)
			}
			v1.POST("/export", handler.ExportProducts)
		}
	}

	return router
}
