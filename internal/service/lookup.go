package service

import (
	"context"

	"github.com/netcycle/netcycle/internal/cache"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/domain/subscription"
)

// getPlan reads a plan through the cache. Plans are immutable once created.
func (p ServiceParams) getPlan(ctx context.Context, id string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, id)
	if p.Cache != nil {
		if v, ok := p.Cache.Get(ctx, key); ok {
			if cached, ok := v.(*plan.Plan); ok {
				c := *cached
				return &c, nil
			}
		}
	}

	pl, err := p.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		c := *pl
		p.Cache.Set(ctx, key, &c, 0)
	}
	return pl, nil
}

func (p ServiceParams) getBusinessUnit(ctx context.Context, id string) (*businessunit.BusinessUnit, error) {
	key := cache.GenerateKey(cache.PrefixBusinessUnit, id)
	if p.Cache != nil {
		if v, ok := p.Cache.Get(ctx, key); ok {
			if cached, ok := v.(*businessunit.BusinessUnit); ok {
				c := *cached
				return &c, nil
			}
		}
	}

	unit, err := p.BusinessUnitRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		c := *unit
		p.Cache.Set(ctx, key, &c, 0)
	}
	return unit, nil
}

// getCustomer is not cached: phone numbers change
func (p ServiceParams) getCustomer(ctx context.Context, id string) (*customer.Customer, error) {
	return p.CustomerRepo.Get(ctx, id)
}

// customersByID loads customers for a set of ids
func (p ServiceParams) customersByID(ctx context.Context, ids []string) (map[string]*customer.Customer, error) {
	customers, err := p.CustomerRepo.List(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*customer.Customer, len(customers))
	for _, c := range customers {
		out[c.ID] = c
	}
	return out, nil
}

// profileFor resolves the billing calendar of one subscription
func (p ServiceParams) profileFor(unit *businessunit.BusinessUnit, sub *subscription.Subscription) schedule.Profile {
	return p.Resolver.ResolveSubscription(unit.Name, unit.Override(), sub.BillingCycle)
}
