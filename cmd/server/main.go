package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netcycle/netcycle/internal/api"
	"github.com/netcycle/netcycle/internal/api/cron"
	v1 "github.com/netcycle/netcycle/internal/api/v1"
	"github.com/netcycle/netcycle/internal/cache"
	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/pubsub"
	"github.com/netcycle/netcycle/internal/pubsub/memory"
	pubsubRouter "github.com/netcycle/netcycle/internal/pubsub/router"
	"github.com/netcycle/netcycle/internal/repository"
	"github.com/netcycle/netcycle/internal/scheduler"
	"github.com/netcycle/netcycle/internal/sentry"
	"github.com/netcycle/netcycle/internal/service"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Metrics
			metrics.New,

			// Billing calendar
			schedule.NewResolverFromConfig,

			// Notification queue
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			notification.NewGateway,
			notification.NewPublisher,
			notification.NewBulkSenderFromConfig,
			notification.NewHandler,
		),
		sentry.Module(),
		postgres.Module(),
		repository.Module(),
	)

	// Services
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewBillingService,
			service.NewCatalogService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewPlanChangeService,
			service.NewSchedulerService,
		),
	)

	// API and scheduler
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
			scheduler.New,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	resolver *schedule.Resolver,
	billingService service.BillingService,
	catalogService service.CatalogService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	planChangeService service.PlanChangeService,
	schedulerService service.SchedulerService,
) api.Handlers {
	return api.Handlers{
		Billing:      v1.NewBillingHandler(billingService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, invoiceService, planChangeService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
		Payment:      v1.NewPaymentHandler(paymentService, logger),
		Catalog:      v1.NewCatalogHandler(catalogService, logger),
		CronBilling:  cron.NewBillingHandler(schedulerService, resolver, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	ps pubsub.PubSub,
	router *pubsubRouter.Router,
	handler *notification.Handler,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	// every mode sends notifications queued by its own writes
	startMessageRouter(lc, cfg, router, handler, ps, log)

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startScheduler(lc, cfg, sched, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeScheduler:
		startScheduler(lc, cfg, sched, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startScheduler(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	if !cfg.Scheduler.Enabled {
		log.Info("billing scheduler is disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			log.Infow("billing scheduler started", "next_run", sched.Next())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *pubsubRouter.Router,
	handler *notification.Handler,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	if !cfg.Notification.Enabled {
		log.Info("notifications are disabled, skipping message router")
		return
	}

	handler.RegisterHandler(router, cfg, ps)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := router.Close(); err != nil {
				log.Errorw("failed to close message router", "error", err)
			}
			return ps.Close()
		},
	})
}
