package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldline/internal/handlers"
	"fieldline/internal/middleware"
	"fieldline/internal/utils"
)

type routeDeps struct {
	auth      *handlers.AuthHandler
	catalog   *handlers.CatalogHandler
	orders    *handlers.OrderHandler
	discounts *handlers.DiscountHandler
	visits    *handlers.VisitHandler
	receiving *handlers.ReceivingHandler
	issuer    *utils.TokenIssuer
}

func setupRouter(deps routeDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit("10-M"))
	{
		auth.POST("/login", deps.auth.Login)
		auth.POST("/register", deps.auth.Register)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(deps.issuer))

	catalog := protected.Group("/catalog")
	{
		catalog.GET("/products", deps.catalog.List)
		catalog.GET("/products/:id", deps.catalog.Get)
	}

	orders := protected.Group("/orders")
	{
		orders.POST("", deps.orders.Checkout)
		orders.GET("", deps.orders.List)
		orders.GET("/:id", deps.orders.Get)
		orders.POST("/:id/cancel", deps.orders.Cancel)
		orders.POST("/:id/reorder", deps.orders.Reorder)
		orders.PATCH("/:id/status", deps.orders.UpdateStatus)
	}

	discounts := protected.Group("/discounts")
	{
		discounts.POST("/preview", deps.discounts.Preview)
		discounts.POST("/validate", deps.discounts.Validate)
	}

	visits := protected.Group("/visits")
	{
		visits.POST("", deps.visits.Create)
		visits.GET("", deps.visits.List)
		visits.GET("/:id", deps.visits.Get)
		visits.PATCH("/:id/start", deps.visits.Start)
		visits.PATCH("/:id/complete", deps.visits.Complete)
		visits.PATCH("/:id/cancel", deps.visits.Cancel)
	}

	warehouse := protected.Group("/warehouse/purchase-orders")
	{
		warehouse.POST("", deps.receiving.Create)
		warehouse.GET("", deps.receiving.List)
		warehouse.GET("/:id", deps.receiving.Get)
		warehouse.PATCH("/:id/lines", deps.receiving.UpdateLines)
		warehouse.POST("/:id/scan", deps.receiving.Scan)
		warehouse.POST("/:id/mark-ordered", deps.receiving.MarkOrdered)
	}

	return router
}
