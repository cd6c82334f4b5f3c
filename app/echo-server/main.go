package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"promoMarket/app/echo-server/router"
	"promoMarket/business/catalog"
	"promoMarket/business/enrichment"
	"promoMarket/business/promotion"
	"promoMarket/business/reconcile"
	"promoMarket/business/store"
	"promoMarket/internal/middleware"
	"promoMarket/internal/repository/gemini"
	"promoMarket/internal/repository/openfoodfacts"
	psqlRepo "promoMarket/internal/repository/postgres"
	redisRepo "promoMarket/internal/repository/redis"
	"promoMarket/internal/rest"
	"promoMarket/pkg/config"
	"promoMarket/pkg/database"
	redisDB "promoMarket/pkg/database/redis"
	"promoMarket/pkg/logger"
	"promoMarket/pkg/metrics"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting PromoMarket", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is an optimization, not a requirement. Without it every remote
	// catalog miss just hits OpenFoodFacts again.
	var catalogCache catalog.LookupCache
	redisClient, err := redisDB.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, catalog lookups will not be cached", "error", err)
	} else {
		catalogCache = redisRepo.NewCatalogCache(redisClient)
	}

	// Init external repos
	offRepo := openfoodfacts.NewOpenFoodFactsRepository(
		openfoodfacts.Config{
			BaseURL: cfg.OpenFoodFacts.BaseUrl,
		},
	)
	geminiRepo := gemini.NewGeminiRepository(
		gemini.Config{
			ApiKey:  cfg.Gemini.ApiKey,
			BaseURL: cfg.Gemini.BaseUrl,
			Model:   cfg.Gemini.Model,
		},
	)

	// Init repo
	storeRepo := psqlRepo.NewStoreRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	promotionRepo := psqlRepo.NewPromotionRepository(db)
	catalogRepo := psqlRepo.NewCatalogRepository(db)

	// Init service
	matcherService := catalog.NewMatcherService(catalogRepo, offRepo, catalogCache)
	enrichmentService := enrichment.NewEnrichmentService(
		geminiRepo,
		cfg.Pipeline.EnrichmentBatchSize,
		cfg.Pipeline.EnrichmentMaxRetries,
		time.Duration(cfg.Pipeline.EnrichmentRetryDelay)*time.Second,
	)
	reconcileService := reconcile.NewReconcileService(matcherService, enrichmentService, storeRepo, productRepo, promotionRepo)
	promotionService := promotion.NewPromotionService(promotionRepo)
	storeService := store.NewStoreService(storeRepo)

	// Init handler
	scrapeHandler := rest.NewScrapeHandler(reconcileService)
	promotionHandler := rest.NewPromotionHandler(promotionService)
	productHandler := rest.NewProductHandler(matcherService)
	storeHandler := rest.NewStoreHandler(storeService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupScrapeRoutes(api, scrapeHandler, authRequired, adminOnly)
	router.SetupPromotionRoutes(api, promotionHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, authRequired)
	router.SetupStoreRoutes(api, storeHandler, authRequired)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis shutdown error", "error", err)
		}
	}

	logger.Info("Server stopped")
}
