package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wealthlens/quant_service/internal/api/handlers"
	"github.com/wealthlens/quant_service/internal/api/routes"
	"github.com/wealthlens/quant_service/internal/domain/services/advisory"
	"github.com/wealthlens/quant_service/internal/domain/services/risk"
	"github.com/wealthlens/quant_service/internal/domain/services/simulation"
	"github.com/wealthlens/quant_service/internal/infrastructure/ai"
	"github.com/wealthlens/quant_service/internal/infrastructure/cache"
	"github.com/wealthlens/quant_service/internal/infrastructure/config"
	"github.com/wealthlens/quant_service/internal/infrastructure/marketdata"
	"github.com/wealthlens/quant_service/pkg/logger"
	"github.com/wealthlens/quant_service/pkg/stochastic"
)

// @title WealthLens Quant Service API
// @version 1.0
// @description Quantitative personal-finance analysis engine: goal projection, portfolio risk and rebalancing evaluation.

// @contact.name API Support
// @contact.email support@wealthlens.io

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional Redis quote cache
	var cacheClient *cache.Client
	if cfg.Redis.Enabled {
		cacheClient, err = cache.New(&cache.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log.Zap())
		if err != nil {
			// The engines are pure computation; a missing cache only
			// disables quote caching.
			log.Warn("Redis unavailable, quote caching disabled", "error", err)
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	// Calculation engines
	source := stochastic.NewPseudoSource()

	simulator := simulation.New(simulation.Assumptions{
		AnnualMeanReturn: cfg.Engine.AnnualMeanReturn,
		AnnualVolatility: cfg.Engine.AnnualVolatility,
		InflationRate:    cfg.Engine.InflationRate,
		Paths:            cfg.Engine.SimulationPaths,
		MinHorizonYears:  1,
	}, source, log.Zap())

	riskCfg := risk.DefaultConfig()
	riskCfg.RiskFreeRate = cfg.Engine.RiskFreeRate
	riskCfg.ExpectedPortfolioReturn = cfg.Engine.ExpectedReturn
	riskCfg.DefaultVolatility = cfg.Engine.DefaultVolatility
	riskCfg.AnalyzeDiversificationK = cfg.Engine.AnalyzeDiversificationK
	riskCfg.RebalanceDiversityK = cfg.Engine.RebalanceDiversificationK
	riskEngine := risk.New(riskCfg, source, log.Zap())

	// Advisory collaborator (degrades to placeholders without an API key)
	var provider ai.Provider
	if cfg.Gemini.APIKey != "" {
		provider = ai.NewGeminiProvider(&ai.ProviderConfig{
			APIKey:       cfg.Gemini.APIKey,
			Model:        cfg.Gemini.Model,
			MaxTokens:    cfg.Gemini.MaxTokens,
			Temperature:  cfg.Gemini.Temperature,
			Timeout:      time.Duration(cfg.Gemini.Timeout) * time.Second,
			RateLimitRPM: cfg.Gemini.RateLimitRPM,
		}, log.Zap())
	} else {
		log.Info("GEMINI_API_KEY not set, advisory narratives will use placeholders")
	}
	advisor := advisory.New(provider, time.Duration(cfg.Gemini.Timeout)*time.Second, log.Zap())

	// Market data proxy
	var quoteCache marketdata.QuoteCache
	if cacheClient != nil {
		quoteCache = cacheClient
	}
	quotes := marketdata.NewClient(marketdata.Config{
		APIKey:   cfg.MarketData.APIKey,
		BaseURL:  cfg.MarketData.BaseURL,
		Timeout:  time.Duration(cfg.MarketData.Timeout) * time.Second,
		CacheTTL: time.Duration(cfg.MarketData.CacheTTL) * time.Second,
	}, quoteCache, log.Zap())

	// Initialize router
	router := routes.SetupRoutes(cfg, log, routes.Handlers{
		Analysis: handlers.NewAnalysisHandlers(simulator, riskEngine, advisor, log.Zap()),
		Market:   handlers.NewMarketHandlers(quotes, log.Zap()),
		Health:   handlers.NewHealthHandlers(cacheClient),
	})

	// Create server
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
