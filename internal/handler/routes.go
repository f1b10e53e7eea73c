package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, paymentHandler *PaymentHandler, statsHandler *StatsHandler, pricingHandler *PricingHandler, subscriberHandler *SubscriberHandler, buildingHandler *BuildingHandler, reportHandler *ReportHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Payment routes
	payments := api.Group("/payments")
	payments.POST("/enroll", paymentHandler.Enroll)
	payments.POST("/:subscriberId/:period/full", paymentHandler.MarkFull)
	payments.POST("/:subscriberId/:period/partial", paymentHandler.AddPartial)
	payments.POST("/:subscriberId/:period/reverse", paymentHandler.Reverse)
	payments.DELETE("/:subscriberId/:period", paymentHandler.Unmark)
	payments.GET("/:subscriberId/:period/entries", paymentHandler.ListEntries)
	payments.DELETE("/entries/:id", paymentHandler.DeleteEntry)

	// Stats routes
	stats := api.Group("/stats")
	stats.GET("/monthly/:period", statsHandler.GetMonthlyStats)
	stats.GET("/monthly/:period/top-unpaid", statsHandler.GetTopUnpaid)
	stats.GET("/clients/:subscriberId/months", statsHandler.GetClientMonths)

	// Daily collection routes
	collections := api.Group("/collections")
	collections.GET("/daily", statsHandler.GetDailyCollection)

	// Subscriber routes
	subscribers := api.Group("/subscribers")
	subscribers.POST("", subscriberHandler.CreateSubscriber)
	subscribers.GET("", subscriberHandler.GetSubscribers)
	subscribers.GET("/:id", subscriberHandler.GetSubscriber)
	subscribers.PUT("/:id", subscriberHandler.UpdateSubscriber)
	subscribers.DELETE("/:id", subscriberHandler.DeleteSubscriber)
	subscribers.POST("/:id/price", pricingHandler.ApplyPriceChange)

	// Building routes
	buildings := api.Group("/buildings")
	buildings.POST("", buildingHandler.CreateBuilding)
	buildings.GET("", buildingHandler.GetBuildings)
	buildings.GET("/:id", buildingHandler.GetBuilding)
	buildings.PUT("/:id", buildingHandler.UpdateBuilding)
	buildings.DELETE("/:id", buildingHandler.DeleteBuilding)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/monthly/:period/xlsx", reportHandler.MonthlyXLSX)
	reports.GET("/daily/pdf", reportHandler.DailyPDF)

	// WebSocket endpoint; authenticates via query token instead of the
	// bearer middleware
	e.GET("/ws", wsHandler.HandleWS)
}
