package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/shop-checkout/internal/apperr"
	"github.com/wichananm65/shop-checkout/internal/cart"
)

var (
	ErrNotFound             = apperr.NotFound("order not found")
	ErrDuplicateTransaction = apperr.Conflict("transaction id already used by another order")
)

// PriceFunc turns the locked cart into the order to persist. Returning an
// error aborts the checkout with nothing changed.
type PriceFunc func(c cart.Cart) (Order, error)

// Store persists orders. Checkout is the only operation that touches carts.
type Store interface {
	// Checkout locks the cart, prices it with price, stores the order, moves
	// every cart line to the order and deletes the cart, all or nothing.
	Checkout(ctx context.Context, cartID int64, price PriceFunc) (Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	GetByID(ctx context.Context, id int64) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// InMemoryStore runs the whole transition inside the cart repository lock.
type InMemoryStore struct {
	mu     sync.RWMutex
	carts  *cart.InMemoryRepository
	orders map[int64]Order
	events []CreatedEvent
	nextID int64
	now    func() time.Time
}

func NewInMemoryStore(carts *cart.InMemoryRepository) *InMemoryStore {
	return &InMemoryStore{carts: carts, orders: make(map[int64]Order), now: time.Now}
}

func (s *InMemoryStore) Checkout(ctx context.Context, cartID int64, price PriceFunc) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var o Order
	lines, err := s.carts.Transfer(ctx, cartID, func(c cart.Cart) (int64, error) {
		var err error
		if o, err = price(c); err != nil {
			return 0, err
		}
		for _, existing := range s.orders {
			if existing.TransactionID == o.TransactionID {
				return 0, ErrDuplicateTransaction
			}
		}
		return s.nextID + 1, nil
	})
	if err != nil {
		return Order{}, err
	}

	s.nextID++
	o.ID = s.nextID
	o.Lines = lines
	o.CreatedAt = s.now().UTC()
	s.orders[o.ID] = o
	s.events = append(s.events, NewCreatedEvent(o))
	return clone(o), nil
}

func (s *InMemoryStore) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (s *InMemoryStore) UpdateStatus(ctx context.Context, id int64, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

// clone copies o so callers cannot reach the stored lines.
func clone(o Order) Order {
	lines := make([]cart.Line, len(o.Lines))
	for i, l := range o.Lines {
		if l.OrderID != nil {
			id := *l.OrderID
			l.OrderID = &id
		}
		if l.CartID != nil {
			id := *l.CartID
			l.CartID = &id
		}
		lines[i] = l
	}
	o.Lines = lines
	return o
}

// Events returns the order.created events recorded so far. Without a
// database there is no outbox; the events stay in memory.
func (s *InMemoryStore) Events() []CreatedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CreatedEvent, len(s.events))
	copy(out, s.events)
	return out
}
