package validator

import (
	"testing"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	SubscriptionID string          `validate:"required"`
	Amount         decimal.Decimal `validate:"gt=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{SubscriptionID: "sub_1", Amount: decimal.RequireFromString("0.01")}))

	err := ValidateRequest(sample{SubscriptionID: "sub_1", Amount: decimal.Zero})
	assert.True(t, ierr.IsValidation(err))

	err = ValidateRequest(sample{Amount: decimal.NewFromInt(-5)})
	assert.True(t, ierr.IsValidation(err))
	assert.Equal(t, "Request validation failed", ierr.DisplayMessage(err))
}
