package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wealthlens/quant_service/internal/api/handlers"
	"github.com/wealthlens/quant_service/internal/api/middleware"
	"github.com/wealthlens/quant_service/internal/infrastructure/config"
	"github.com/wealthlens/quant_service/pkg/logger"
	"github.com/wealthlens/quant_service/pkg/tracing"
)

// Handlers bundles the handler sets the router needs.
type Handlers struct {
	Analysis *handlers.AnalysisHandlers
	Market   *handlers.MarketHandlers
	Health   *handlers.HealthHandlers
}

// SetupRoutes configures all application routes
func SetupRoutes(cfg *config.Config, log *logger.Logger, h Handlers) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(tracing.HTTPMiddleware()) // Tracing should be early in the chain
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	// Health and operational endpoints (no version prefix)
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/live", h.Health.Live)
	router.GET("/version", h.Health.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation (development only)
	if cfg.Environment != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate-goal", h.Analysis.SimulateGoal)
		v1.POST("/analyze-portfolio", h.Analysis.AnalyzePortfolio)
		v1.POST("/rebalance-portfolio", h.Analysis.RebalancePortfolio)
		v1.POST("/market-data", h.Market.GetQuote)
	}

	return router
}
