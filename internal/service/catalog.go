package service

import (
	"context"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// CatalogService manages plans, customers and business units
type CatalogService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context) (*dto.ListPlansResponse, error)

	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)

	CreateBusinessUnit(ctx context.Context, req dto.CreateBusinessUnitRequest) (*dto.BusinessUnitResponse, error)
	GetBusinessUnit(ctx context.Context, id string) (*dto.BusinessUnitResponse, error)
	ListBusinessUnits(ctx context.Context) (*dto.ListBusinessUnitsResponse, error)
}

type catalogService struct {
	ServiceParams
}

func NewCatalogService(params ServiceParams) CatalogService {
	return &catalogService{
		ServiceParams: params,
	}
}

func (s *catalogService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *catalogService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	p, err := s.getPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *catalogService) ListPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	plans, err := s.PlanRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(plans, func(p *plan.Plan, _ int) *dto.PlanResponse {
		return &dto.PlanResponse{Plan: p}
	})), nil
}

func (s *catalogService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	phone, err := notification.NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if req.ReferredBy != nil && *req.ReferredBy != "" {
		if _, err := s.CustomerRepo.Get(ctx, *req.ReferredBy); err != nil {
			if ierr.IsNotFound(err) {
				return nil, ierr.WithError(err).
					WithHintf("Referring customer %s does not exist", *req.ReferredBy).
					Mark(ierr.ErrValidation)
			}
			return nil, err
		}
	}

	c := req.ToCustomer(ctx)
	c.PhoneNumber = phone
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *catalogService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *catalogService) CreateBusinessUnit(ctx context.Context, req dto.CreateBusinessUnitRequest) (*dto.BusinessUnitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unit := req.ToBusinessUnit(ctx)
	if err := s.BusinessUnitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.Logger.Infow("business unit created",
		"business_unit_id", unit.ID,
		"name", unit.Name,
		"profile", s.Resolver.ResolveProfile(unit.Name, unit.Override()).Name,
	)
	return &dto.BusinessUnitResponse{BusinessUnit: unit}, nil
}

func (s *catalogService) GetBusinessUnit(ctx context.Context, id string) (*dto.BusinessUnitResponse, error) {
	unit, err := s.getBusinessUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BusinessUnitResponse{BusinessUnit: unit}, nil
}

func (s *catalogService) ListBusinessUnits(ctx context.Context) (*dto.ListBusinessUnitsResponse, error) {
	units, err := s.BusinessUnitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(units, func(u *businessunit.BusinessUnit, _ int) *dto.BusinessUnitResponse {
		return &dto.BusinessUnitResponse{BusinessUnit: u}
	})), nil
}

// SubscriptionService opens and looks up subscriptions
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.getCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	pl, err := s.getPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	unit, err := s.getBusinessUnit(ctx, req.BusinessUnitID)
	if err != nil {
		return nil, err
	}

	profile := s.Resolver.ResolveProfile(unit.Name, unit.Override())
	sub, err := req.ToSubscription(ctx, s.today(), profile.PeriodType)
	if err != nil {
		return nil, err
	}
	// a unit override pins every subscription of the unit
	if override := unit.Override(); override != "" {
		sub.BillingCycle = override
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", sub.ID,
		"customer_id", cust.ID,
		"plan_id", pl.ID,
		"business_unit_id", unit.ID,
		"billing_cycle", sub.BillingCycle,
	)

	s.notify(ctx, notification.KindWelcome, sub.ID, cust, notification.Welcome(cust.Name, pl.Name))
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = &types.SubscriptionFilter{}
	}
	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})), nil
}
