package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/netcycle/netcycle/internal/errors"
)

// FilterFunc is a generic filter function type
type FilterFunc[T any] func(ctx context.Context, item *T, filter interface{}) bool

// SortFunc is a generic sort function type
type SortFunc[T any] func(i, j *T) bool

// InMemoryStore implements a generic in-memory store. Items are copied on the
// way in and out so callers cannot mutate stored state behind the store's back,
// which keeps versioned writes honest the way a database would.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewInMemoryStore creates a new InMemoryStore
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]*T),
	}
}

func clone[T any](item *T) *T {
	c := *item
	return &c
}

// Create adds a new item to the store
func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("An item with id %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[id] = clone(item)
	return nil
}

// CreateMany adds items atomically: nothing is stored when any id is taken
func (s *InMemoryStore[T]) CreateMany(ctx context.Context, ids []string, items []*T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := s.items[id]; exists {
			return ierr.NewError("item already exists").
				WithHintf("An item with id %s already exists", id).
				Mark(ierr.ErrAlreadyExists)
		}
		if _, dup := seen[id]; dup {
			return ierr.NewError("duplicate id in batch").
				WithHintf("Id %s appears twice in the batch", id).
				Mark(ierr.ErrAlreadyExists)
		}
		seen[id] = struct{}{}
	}

	for i, id := range ids {
		s.items[id] = clone(items[i])
	}
	return nil
}

// Get retrieves an item by ID
func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return clone(item), nil
	}

	return nil, ierr.NewError("item not found").
		WithHintf("Item %s was not found", id).
		Mark(ierr.ErrNotFound)
}

// List retrieves items based on filter
func (s *InMemoryStore[T]) List(ctx context.Context, filter interface{}, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*T, 0, len(s.items))
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			result = append(result, clone(item))
		}
	}

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}

	return result, nil
}

// Count returns the total number of items matching the filter
func (s *InMemoryStore[T]) Count(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			count++
		}
	}

	return count, nil
}

// Update replaces an existing item
func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item *T) error {
	return s.Mutate(ctx, id, func(stored *T) error {
		*stored = *item
		return nil
	})
}

// Mutate applies fn to a copy of the stored item under the write lock and
// stores the copy when fn succeeds. It is the compare-and-swap primitive of
// the versioned stores.
func (s *InMemoryStore[T]) Mutate(ctx context.Context, id string, fn func(stored *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[id]
	if !exists {
		return ierr.NewError("item not found").
			WithHintf("Item %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	updated := clone(existing)
	if err := fn(updated); err != nil {
		return err
	}
	s.items[id] = updated
	return nil
}

// Delete removes an item from the store
func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithHintf("Item %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	delete(s.items, id)
	return nil
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*T)
}
