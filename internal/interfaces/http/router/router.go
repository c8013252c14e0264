// Package router assembles the gin engine: the middleware chain and
// the versioned API routes.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/infrastructure/config"
	"github.com/pharmalink/backend/internal/infrastructure/logger"
	"github.com/pharmalink/backend/internal/infrastructure/telemetry"
	"github.com/pharmalink/backend/internal/interfaces/http/handler"
	"github.com/pharmalink/backend/internal/interfaces/http/middleware"
)

// Handlers groups every handler the router mounts
type Handlers struct {
	Inventory *handler.InventoryHandler
	Order     *handler.OrderHandler
	Pricing   *handler.PricingHandler
	Catalog   *handler.CatalogHandler
	Outbox    *handler.OutboxHandler
	System    *handler.SystemHandler
}

// Options carries the cross-cutting dependencies of the chain
type Options struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	MeterProvider  *telemetry.MeterProvider
	// RateLimit is requests per tenant per minute; zero disables it
	RateLimit int
	Logger    *zap.Logger
}

// New builds the engine with the full middleware chain and all routes
func New(handlers Handlers, opts Options) *gin.Engine {
	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(opts.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CORS(opts.HTTP),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Tenant(middleware.DefaultTenantConfig()),
	)
	for _, mw := range middleware.Tracing(opts.ServiceName, opts.TracingEnabled) {
		engine.Use(mw)
	}
	engine.Use(middleware.HTTPMetrics(opts.MeterProvider))
	if opts.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimit, time.Minute)))
	}

	engine.GET("/health", handlers.System.Health)
	engine.GET("/ready", handlers.System.Ready)

	v1 := engine.Group("/api/v1")
	{
		movements := v1.Group("/movements")
		{
			movements.POST("", handlers.Inventory.AppendMovement)
			movements.POST("/:id/retire", handlers.Inventory.RetireMovement)
			movements.POST("/replace-stock", handlers.Inventory.ReplaceStockReference)
		}

		stocks := v1.Group("/stocks")
		{
			stocks.GET("/:id", handlers.Inventory.GetStock)
			stocks.POST("/:id/reconcile", handlers.Inventory.ReconcileStock)
			stocks.POST("/:id/rebuild-orderable", handlers.Inventory.RebuildOrderable)
		}
		v1.GET("/store-points/:id/stocks", handlers.Inventory.ListStocks)

		orders := v1.Group("/orders")
		{
			orders.POST("", handlers.Order.PlaceOrder)
			orders.POST("/:id/complete", handlers.Order.CompleteOrder)
			orders.POST("/:id/transition", handlers.Order.Transition)
			orders.POST("/:id/additional-discount", handlers.Order.ApplyAdditionalDiscount)
			orders.POST("/:id/copy", handlers.Order.CopyOrder)
			orders.POST("/:id/credit-terms", handlers.Pricing.ApplyCreditTerms)
			orders.GET("/:id/credit", handlers.Pricing.GetOrderCredit)
		}

		v1.GET("/discounts/preview", handlers.Pricing.PreviewDiscount)

		credits := v1.Group("/credits")
		{
			credits.POST("/:id/payments", handlers.Pricing.RecordPayment)
			credits.GET("/overdue", handlers.Pricing.ListOverdueCredits)
		}

		products := v1.Group("/products")
		{
			products.GET("", handlers.Catalog.ListProducts)
			products.PUT("/:id/order-mode", handlers.Catalog.SetOrderMode)
			products.PUT("/:id/salesable", handlers.Catalog.SetSalesable)
			products.POST("/:id/restock-interest", handlers.Catalog.RegisterRestockInterest)
		}
		v1.PUT("/organizations/:id/settings", handlers.Catalog.UpdateOrganizationSettings)

		outbox := v1.Group("/outbox")
		{
			outbox.GET("/dead-letters", handlers.Outbox.ListDeadLetters)
			outbox.GET("/entries/:id", handlers.Outbox.GetEntry)
			outbox.POST("/entries/:id/retry", handlers.Outbox.RetryEntry)
			outbox.POST("/retry-all", handlers.Outbox.RetryAll)
			outbox.GET("/stats", handlers.Outbox.Stats)
		}
	}

	return engine
}
