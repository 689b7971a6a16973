package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/shop-checkout/internal/apperr"
)

var (
	ErrCartNotFound = apperr.NotFound("cart not found")
	ErrLineNotFound = apperr.NotFound("cart line not found")
)

// ErrActiveCartExists is returned by Create when the session already has an
// active cart.
var ErrActiveCartExists = apperr.Conflict("session already has an active cart")

// Repository stores carts and the lines they own.
type Repository interface {
	// Create opens a new active cart. A session holds at most one active cart.
	Create(ctx context.Context, customerID int64, sessionID string) (Cart, error)
	// FindActive returns the newest active cart of the session.
	FindActive(ctx context.Context, customerID int64, sessionID string) (Cart, error)
	Get(ctx context.Context, id int64) (Cart, error)
	// UpsertLine sets the quantity of entryID in the cart, creating the line
	// if needed. An existing quantity is replaced, not incremented.
	UpsertLine(ctx context.Context, cartID, entryID int64, quantity int) (Line, error)
	UpdateLineQuantity(ctx context.Context, cartID, entryID int64, quantity int) (Line, error)
	DeleteLine(ctx context.Context, cartID, lineID int64) error
	SetCoupon(ctx context.Context, cartID, couponID int64) error
}

// InMemoryRepository keeps carts in a map guarded by one mutex.
type InMemoryRepository struct {
	mu         sync.RWMutex
	carts      map[int64]*Cart
	nextCartID int64
	nextLineID int64
	now        func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int64]*Cart), now: time.Now}
}

func (r *InMemoryRepository) Create(ctx context.Context, customerID int64, sessionID string) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.Active && c.CustomerID == customerID && c.SessionID == sessionID {
			return Cart{}, ErrActiveCartExists
		}
	}
	r.nextCartID++
	c := &Cart{
		ID:         r.nextCartID,
		CustomerID: customerID,
		SessionID:  sessionID,
		Active:     true,
		Lines:      []Line{},
		CreatedAt:  r.now().UTC(),
	}
	r.carts[c.ID] = c
	return clone(c), nil
}

func (r *InMemoryRepository) FindActive(ctx context.Context, customerID int64, sessionID string) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *Cart
	for _, c := range r.carts {
		if c.Active && c.CustomerID == customerID && c.SessionID == sessionID {
			if found == nil || c.ID > found.ID {
				found = c
			}
		}
	}
	if found == nil {
		return Cart{}, ErrCartNotFound
	}
	return clone(found), nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id int64) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[id]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	return clone(c), nil
}

func (r *InMemoryRepository) UpsertLine(ctx context.Context, cartID, entryID int64, quantity int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return Line{}, ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].EntryID == entryID {
			c.Lines[i].Quantity = quantity
			return c.Lines[i], nil
		}
	}
	r.nextLineID++
	id := cartID
	l := Line{ID: r.nextLineID, EntryID: entryID, Quantity: quantity, CartID: &id}
	c.Lines = append(c.Lines, l)
	return l, nil
}

func (r *InMemoryRepository) UpdateLineQuantity(ctx context.Context, cartID, entryID int64, quantity int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return Line{}, ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].EntryID == entryID {
			c.Lines[i].Quantity = quantity
			return c.Lines[i], nil
		}
	}
	return Line{}, ErrLineNotFound
}

func (r *InMemoryRepository) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	for i, l := range c.Lines {
		if l.ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

func (r *InMemoryRepository) SetCoupon(ctx context.Context, cartID, couponID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	id := couponID
	c.CouponID = &id
	return nil
}

// Transfer hands a snapshot of the cart to fn while holding the write lock.
// fn returns the id of the order that takes over the lines. On success the
// cart is removed and its lines are returned re-parented to that order; on
// failure nothing changes.
func (r *InMemoryRepository) Transfer(ctx context.Context, cartID int64, fn func(Cart) (int64, error)) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	orderID, err := fn(clone(c))
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		id := orderID
		l.CartID = nil
		l.OrderID = &id
		lines = append(lines, l)
	}
	delete(r.carts, cartID)
	return lines, nil
}

func clone(c *Cart) Cart {
	out := *c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	sort.Slice(out.Lines, func(i, j int) bool { return out.Lines[i].ID < out.Lines[j].ID })
	if c.CouponID != nil {
		id := *c.CouponID
		out.CouponID = &id
	}
	return out
}
