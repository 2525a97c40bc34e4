package testutil

import (
	"context"
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
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubscriptionRepo subscription.Repository
	PlanRepo         plan.Repository
	CustomerRepo     customer.Repository
	BusinessUnitRepo businessunit.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	PlanChangeRepo   planchange.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *RecordingPublisher
	gateway   *RecordingGateway
	db        *MockPostgresClient
	logger    *logger.Logger
	config    *config.Configuration
	resolver  *schedule.Resolver
	metrics   *metrics.Collector
	cache     cache.Cache
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	// Initialize logger with test config
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	// deliver synchronously to the recording gateway in bulk tests
	cfg.Notification.BatchDelay = 0

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.resolver, err = schedule.NewResolverFromConfig(cfg)
	if err != nil {
		s.T().Fatalf("failed to create schedule resolver: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		PlanRepo:         NewInMemoryPlanStore(),
		CustomerRepo:     NewInMemoryCustomerStore(),
		BusinessUnitRepo: NewInMemoryBusinessUnitStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		PlanChangeRepo:   NewInMemoryPlanChangeStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewRecordingPublisher()
	s.gateway = NewRecordingGateway()
	// a fresh registry per test keeps counters isolated
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.BusinessUnitRepo.(*InMemoryBusinessUnitStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.PlanChangeRepo.(*InMemoryPlanChangeStore).Clear()
	s.publisher.Clear()
	s.gateway.Clear()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the recording notification publisher
func (s *BaseServiceTestSuite) GetPublisher() *RecordingPublisher {
	return s.publisher
}

// GetGateway returns the recording SMS gateway
func (s *BaseServiceTestSuite) GetGateway() *RecordingGateway {
	return s.gateway
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetResolver returns the schedule resolver over the default profile table
func (s *BaseServiceTestSuite) GetResolver() *schedule.Resolver {
	return s.resolver
}

// GetMetrics returns the per-test metrics collector
func (s *BaseServiceTestSuite) GetMetrics() *metrics.Collector {
	return s.metrics
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
