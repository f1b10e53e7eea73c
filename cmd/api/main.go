package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mertdogan/duesly/duesly-backend/internal/config"
	"github.com/mertdogan/duesly/duesly-backend/internal/handler"
	"github.com/mertdogan/duesly/duesly-backend/internal/middleware"
	"github.com/mertdogan/duesly/duesly-backend/internal/observability/metrics"
	"github.com/mertdogan/duesly/duesly-backend/internal/repository/postgres"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/mertdogan/duesly/duesly-backend/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Register Prometheus metrics
	metrics.Init()

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	buildingRepo := postgres.NewBuildingRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	obligationRepo := postgres.NewObligationRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)

	// Initialize services
	reconciliationService := service.NewReconciliationService(obligationRepo, ledgerRepo)
	statsService := service.NewStatsService(obligationRepo, ledgerRepo)
	pricingService := service.NewPricingService(obligationRepo, subscriberRepo)
	buildingService := service.NewBuildingService(buildingRepo)
	subscriberService := service.NewSubscriberService(subscriberRepo, buildingRepo, reconciliationService)

	// WebSocket hub; the hub doubles as the event publisher
	hub := websocket.NewHub()
	reconciliationService.SetEventPublisher(hub)
	pricingService.SetEventPublisher(hub)
	buildingService.SetEventPublisher(hub)
	subscriberService.SetEventPublisher(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateBurstSize)
	defer rateLimiter.Stop()

	// Initialize handlers
	paymentHandler := handler.NewPaymentHandler(reconciliationService)
	statsHandler := handler.NewStatsHandler(statsService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	subscriberHandler := handler.NewSubscriberHandler(subscriberService)
	buildingHandler := handler.NewBuildingHandler(buildingService)
	reportHandler := handler.NewReportHandler(statsService)
	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, paymentHandler, statsHandler, pricingHandler, subscriberHandler, buildingHandler, reportHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
