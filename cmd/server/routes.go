package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardswap.backend/internal/interfaces/http/handlers"
	"cardswap.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "cardswap-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	tradeHandler   *handlers.TradeHandler
	saleHandler    *handlers.SaleHandler
	listingHandler *handlers.ListingHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, h http.Handler) {
	r.GET("/metrics", gin.WrapH(h))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	v1.Use(d.authMiddleware)
	idempotent := middleware.IdempotencyMiddleware()
	{
		v1.POST("/listings", idempotent, d.listingHandler.CreateListing)
		v1.GET("/me/limits", d.listingHandler.GetMyLimits)

		trades := v1.Group("/trades")
		{
			trades.POST("", idempotent, d.tradeHandler.ProposeTrade)
			trades.GET("", d.tradeHandler.ListTrades)
			trades.GET("/:id", d.tradeHandler.GetTrade)
			trades.POST("/:id/accept", idempotent, d.tradeHandler.AcceptTrade)
			trades.POST("/:id/decline", idempotent, d.tradeHandler.DeclineTrade)
			trades.POST("/:id/release", idempotent, d.tradeHandler.ReleaseCodes)
			trades.POST("/:id/confirm", idempotent, d.tradeHandler.ConfirmTrade)
			trades.POST("/:id/dispute", idempotent, d.tradeHandler.DisputeTrade)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", idempotent, d.saleHandler.CreateSale)
			sales.GET("", d.saleHandler.ListSales)
			sales.GET("/:id", d.saleHandler.GetSale)
			sales.POST("/:id/accept", idempotent, d.saleHandler.AcceptSale)
			sales.POST("/:id/confirm", idempotent, d.saleHandler.ConfirmSale)
			sales.POST("/:id/cancel", idempotent, d.saleHandler.CancelSale)
			sales.POST("/:id/dispute", idempotent, d.saleHandler.DisputeSale)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/trades", d.tradeHandler.ListTrades)
			admin.POST("/trades/:id/reverse", idempotent, d.tradeHandler.ReverseTrade)
			admin.GET("/sales", d.saleHandler.ListSales)

			admin.GET("/users", d.adminHandler.ListUsers)
			admin.PATCH("/users/:id", d.adminHandler.UpdateUser)

			admin.GET("/disputes", d.adminHandler.ListDisputes)
			admin.GET("/disputes/:id", d.adminHandler.GetDispute)
			admin.PUT("/disputes/:id", d.adminHandler.ResolveDispute)

			admin.GET("/fraud-flags", d.adminHandler.ListFraudFlags)
			admin.PUT("/fraud-flags/:id", d.adminHandler.ReviewFraudFlag)
			admin.POST("/fraud-scan", d.adminHandler.RunFraudScan)

			admin.GET("/settings", d.adminHandler.ListSettings)
			admin.PUT("/settings/:key", d.adminHandler.UpdateSetting)

			admin.GET("/audit-logs", d.adminHandler.ListAuditLogs)

			admin.POST("/sweep", d.adminHandler.RunSweep)
		}
	}
}
