package dto

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/domain/subscription"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	CustomerID     string `json:"customer_id" validate:"required"`
	PlanID         string `json:"plan_id" validate:"required"`
	BusinessUnitID string `json:"business_unit_id" validate:"required"`
	// InstallDate defaults to today
	InstallDate string `json:"install_date" validate:"omitempty,datetime=2006-01-02"`
	// BillingCycle defaults to the cycle of the business unit's profile
	BillingCycle types.BillingCycle `json:"billing_cycle,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycle != "" {
		return r.BillingCycle.Validate()
	}
	return nil
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context, now time.Time, cycle types.BillingCycle) (*subscription.Subscription, error) {
	installDate, err := parseDateOr("install_date", r.InstallDate, now)
	if err != nil {
		return nil, err
	}
	if r.BillingCycle != "" {
		cycle = r.BillingCycle
	}
	return &subscription.Subscription{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:     r.CustomerID,
		PlanID:         r.PlanID,
		BusinessUnitID: r.BusinessUnitID,
		InstallDate:    installDate,
		BillingCycle:   cycle,
		Balance:        decimal.Zero,
		Active:         true,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}, nil
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse = ListResponse[*SubscriptionResponse]
