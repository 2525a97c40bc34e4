package subscription

import (
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsFirstFor(t *testing.T) {
	first := &Subscription{ID: "sub_a", CustomerID: "cust_1", InstallDate: types.NewDate(2024, time.May, 2)}
	second := &Subscription{ID: "sub_b", CustomerID: "cust_1", InstallDate: types.NewDate(2025, time.January, 9)}
	sameDay := &Subscription{ID: "sub_c", CustomerID: "cust_1", InstallDate: types.NewDate(2024, time.May, 2)}
	otherCustomer := &Subscription{ID: "sub_0", CustomerID: "cust_2", InstallDate: types.NewDate(2020, time.May, 2)}

	all := []*Subscription{second, otherCustomer, first, sameDay}

	assert.True(t, first.IsFirstFor(all))
	assert.False(t, second.IsFirstFor(all))
	assert.False(t, sameDay.IsFirstFor(all), "ties go to the lower id")
	assert.True(t, otherCustomer.IsFirstFor(all))
}

func TestHasCredit(t *testing.T) {
	assert.True(t, (&Subscription{Balance: decimal.NewFromInt(-1)}).HasCredit())
	assert.False(t, (&Subscription{Balance: decimal.Zero}).HasCredit())
}
