package dto

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/plan"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name       string          `json:"name" validate:"required,max=100"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.MonthlyFee.IsNegative() {
		return ierr.NewError("monthly fee must not be negative").
			WithHint("Monthly fee must be zero or more").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:       r.Name,
		MonthlyFee: r.MonthlyFee.Round(2),
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

type PlanResponse struct {
	*plan.Plan
}

type ListPlansResponse = ListResponse[*PlanResponse]

type CreateCustomerRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	PhoneNumber string  `json:"phone_number" validate:"required"`
	ReferredBy  *string `json:"referred_by,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	return &customer.Customer{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		ReferredBy:  r.ReferredBy,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

type CustomerResponse struct {
	*customer.Customer
}

type CreateBusinessUnitRequest struct {
	Name                 string              `json:"name" validate:"required,max=255"`
	BillingCycleOverride *types.BillingCycle `json:"billing_cycle_override,omitempty"`
}

func (r *CreateBusinessUnitRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycleOverride != nil {
		return r.BillingCycleOverride.Validate()
	}
	return nil
}

func (r *CreateBusinessUnitRequest) ToBusinessUnit(ctx context.Context) *businessunit.BusinessUnit {
	return &businessunit.BusinessUnit{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUSINESS_UNIT),
		Name:                 r.Name,
		BillingCycleOverride: r.BillingCycleOverride,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}

type BusinessUnitResponse struct {
	*businessunit.BusinessUnit
}

type ListBusinessUnitsResponse = ListResponse[*BusinessUnitResponse]
