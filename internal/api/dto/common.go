package dto

import (
	"time"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse is the envelope of every list endpoint
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func NewListResponse[T any](items []T) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{Items: items, Total: len(items)}
}

// parseDateOr parses a YYYY-MM-DD field, returning fallback when the field is empty
func parseDateOr(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return types.DateOnly(fallback), nil
	}
	d, err := types.ParseDate(value)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("%s must be a date in YYYY-MM-DD format", field).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}
