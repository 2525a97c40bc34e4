package service

import (
	"time"

	"github.com/netcycle/netcycle/internal/cache"
	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/payment"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/planchange"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/sentry"
	"github.com/netcycle/netcycle/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger   *logger.Logger
	Config   *config.Configuration
	DB       postgres.IClient
	Resolver *schedule.Resolver
	Cache    cache.Cache
	Metrics  *metrics.Collector
	Sentry   *sentry.Service

	// Repositories
	SubRepo          subscription.Repository
	PlanRepo         plan.Repository
	CustomerRepo     customer.Repository
	BusinessUnitRepo businessunit.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	PlanChangeRepo   planchange.Repository

	// Notifications
	Notifier   notification.Publisher
	BulkSender *notification.BulkSender
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	resolver *schedule.Resolver,
	cache cache.Cache,
	metrics *metrics.Collector,
	sentry *sentry.Service,
	subRepo subscription.Repository,
	planRepo plan.Repository,
	customerRepo customer.Repository,
	businessUnitRepo businessunit.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	planChangeRepo planchange.Repository,
	notifier notification.Publisher,
	bulkSender *notification.BulkSender,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Resolver:         resolver,
		Cache:            cache,
		Metrics:          metrics,
		Sentry:           sentry,
		SubRepo:          subRepo,
		PlanRepo:         planRepo,
		CustomerRepo:     customerRepo,
		BusinessUnitRepo: businessUnitRepo,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
		PlanChangeRepo:   planChangeRepo,
		Notifier:         notifier,
		BulkSender:       bulkSender,
	}
}

// today is the current calendar day in the billing timezone
func (p ServiceParams) today() time.Time {
	return types.DateOnly(time.Now().In(p.Resolver.Location()))
}
