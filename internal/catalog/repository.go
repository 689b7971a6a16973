package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/shop-checkout/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("catalog entry not found")
)

// Repository is read-only: catalog entries are maintained by the catalog
// owner, outside this service.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	GetByID(ctx context.Context, id int64) (Entry, error)
	// ListByIDs returns the entries that exist among ids, keyed by id.
	// Missing ids are simply absent from the map.
	ListByIDs(ctx context.Context, ids []int64) (map[int64]Entry, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

func NewInMemoryRepository(seed []Entry) *InMemoryRepository {
	r := &InMemoryRepository{entries: make(map[int64]Entry, len(seed))}
	for _, e := range seed {
		r.entries[e.ID] = e
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]Entry, len(ids))
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

// Remove deletes an entry. The catalog owner does this outside the service;
// tests use it to simulate an entry vanishing under a cart line.
func (r *InMemoryRepository) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}
