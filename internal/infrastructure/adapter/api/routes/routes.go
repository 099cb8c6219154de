package routes

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Payment      *handler.PaymentHandler
	Card         *handler.CardHandler
	Delivery     *handler.DeliveryHandler
	Confirmation *handler.ConfirmationHandler
	Health       *handler.HealthHandler
	Metrics      http.Handler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, tokens middleware.TokenValidator, logger coreport.Logger) {
	// Unauthenticated: gateway callback, probes
	router.POST("/payments/confirm", h.Confirmation.Post)
	router.GET("/payments/confirm", h.Confirmation.Get)
	router.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	authed := router.Group("/", middleware.Auth(tokens, logger))

	payments := authed.Group("/payments")
	{
		payments.POST("", h.Payment.CreateSession)
		payments.GET("", h.Payment.List)
		payments.POST("/charge", h.Payment.ChargeToken)
		payments.GET("/:id", h.Payment.Get)
		payments.POST("/:id/status", h.Payment.QueryStatus)
		payments.POST("/:id/rollback", h.Payment.Rollback)

		payments.GET("/:id/delivery", h.Delivery.Get)
		payments.PUT("/:id/delivery/status", h.Delivery.Advance)
		payments.POST("/:id/delivery/attempts", h.Delivery.RecordAttempt)
		payments.POST("/:id/delivery/rating", h.Delivery.Rate)
	}

	cards := authed.Group("/cards")
	{
		cards.POST("", h.Card.Catalog)
		cards.GET("", h.Card.List)
		cards.DELETE("/:aliasToken", h.Card.Delete)
	}

	admin := authed.Group("/admin")
	{
		admin.GET("/payments/stats", h.Payment.Stats)
		admin.GET("/payments/:id/audit", h.Payment.AuditTrail)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
