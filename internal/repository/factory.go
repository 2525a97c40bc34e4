package repository

import (
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/payment"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/planchange"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
	postgresRepo "github.com/netcycle/netcycle/internal/repository/postgres"
	"go.uber.org/fx"
)

// Module provides every postgres backed repository
func Module() fx.Option {
	return fx.Module("repository",
		fx.Provide(
			NewPlanRepository,
			NewCustomerRepository,
			NewBusinessUnitRepository,
			NewSubscriptionRepository,
			NewInvoiceRepository,
			NewPaymentRepository,
			NewPlanChangeRepository,
		),
	)
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(db, logger)
}

func NewBusinessUnitRepository(db *postgres.DB, logger *logger.Logger) businessunit.Repository {
	return postgresRepo.NewBusinessUnitRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPlanChangeRepository(db *postgres.DB, logger *logger.Logger) planchange.Repository {
	return postgresRepo.NewPlanChangeRepository(db, logger)
}
