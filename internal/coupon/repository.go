package coupon

import (
	"context"
	"sync"

	"github.com/wichananm65/shop-checkout/internal/apperr"
)

var (
	ErrNotFound = apperr.NotFound("coupon not found")
)

// Repository gives read access to coupons.
type Repository interface {
	GetByCode(ctx context.Context, code string) (Coupon, error)
	GetByID(ctx context.Context, id int64) (Coupon, error)
}

// InMemoryRepository for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	coupons []Coupon
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	r := &InMemoryRepository{coupons: make([]Coupon, 0, len(seed))}
	r.coupons = append(r.coupons, seed...)
	return r
}

func (r *InMemoryRepository) GetByCode(ctx context.Context, code string) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}
