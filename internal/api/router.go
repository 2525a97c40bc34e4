package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netcycle/netcycle/internal/api/cron"
	v1 "github.com/netcycle/netcycle/internal/api/v1"
	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"github.com/netcycle/netcycle/internal/rest/middleware"
	"github.com/netcycle/netcycle/internal/types"
)

type Handlers struct {
	Billing      *v1.BillingHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	Payment      *v1.PaymentHandler
	Catalog      *v1.CatalogHandler
	CronBilling  *cron.BillingHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, collector *metrics.Collector) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	{
		billing := cronGroup.Group("/billing")
		billing.POST("/daily", handlers.CronBilling.RunDailyTasks)
	}

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/generate", handlers.Billing.GenerateInvoices)
		billing.GET("/schedule", handlers.Billing.GetBillingSchedule)
	}

	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Catalog.CreatePlan)
		plans.GET("", handlers.Catalog.ListPlans)
		plans.GET("/:id", handlers.Catalog.GetPlan)
	}

	customers := router.Group("/customers")
	{
		customers.POST("", handlers.Catalog.CreateCustomer)
		customers.GET("/:id", handlers.Catalog.GetCustomer)
	}

	units := router.Group("/business-units")
	{
		units.POST("", handlers.Catalog.CreateBusinessUnit)
		units.GET("", handlers.Catalog.ListBusinessUnits)
		units.GET("/:id", handlers.Catalog.GetBusinessUnit)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/disconnect", handlers.Subscription.Disconnect)
		subscriptions.POST("/:id/activate", handlers.Subscription.Activate)
		subscriptions.POST("/:id/recalculate-balance", handlers.Subscription.RecalculateBalance)
		subscriptions.POST("/:id/plan-change", handlers.Subscription.ChangePlan)
		subscriptions.POST("/:id/plan-change/preview", handlers.Subscription.PreviewPlanChange)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/pending-verification", handlers.Invoice.MarkPendingVerification)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.ApplyPayment)
		payments.GET("", handlers.Payment.ListPayments)
		payments.POST("/pay-all", handlers.Payment.PayAll)
		payments.GET("/:id", handlers.Payment.GetPayment)
	}
}
