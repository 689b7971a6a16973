package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-checkout/internal/apperr"
	"github.com/wichananm65/shop-checkout/internal/cart"
	"github.com/wichananm65/shop-checkout/internal/logging"
	"github.com/wichananm65/shop-checkout/internal/metrics"
)

var (
	ErrMissingTransaction  = apperr.Validation("transaction_id is required")
	ErrMissingCart         = apperr.Validation("cart_id is required")
	ErrNotOwner            = apperr.Authorization("order or cart belongs to another customer")
	ErrPaymentNotConfirmed = apperr.Conflict("payment has not been confirmed")
)

// PaymentConfirmer asks the payment provider whether an order was paid.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, o Order) (bool, error)
}

type Service struct {
	store    Store
	carts    *cart.Service
	payments PaymentConfirmer
	policy   PricingPolicy
	now      func() time.Time
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(store Store, carts *cart.Service, payments PaymentConfirmer) *Service {
	return &Service{
		store:    store,
		carts:    carts,
		payments: payments,
		policy:   PriceWithCoupon,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
}

func (s *Service) WithPolicy(p PricingPolicy) *Service {
	s.policy = p
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithLogger(log zerolog.Logger) *Service {
	s.log = log
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Checkout converts cartID into a pending order for customerID. The price is
// computed from the cart as it stands under the checkout lock. Empty carts
// produce zero-total orders.
func (s *Service) Checkout(ctx context.Context, cartID int64, transactionID string, customerID int64) (Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return Order{}, ErrMissingTransaction
	}
	if cartID <= 0 {
		return Order{}, ErrMissingCart
	}

	o, err := s.store.Checkout(ctx, cartID, func(c cart.Cart) (Order, error) {
		if c.CustomerID != customerID {
			return Order{}, ErrNotOwner
		}
		return s.price(ctx, c, transactionID)
	})
	s.metrics.Checkout(result(err))
	if err != nil {
		logging.FromContext(ctx, &s.log).Info().Int64("cart_id", cartID).Int64("customer_id", customerID).Err(err).Msg("checkout refused")
		return Order{}, err
	}
	logging.FromContext(ctx, &s.log).Info().
		Int64("order_id", o.ID).
		Int64("customer_id", customerID).
		Int64("total_price", o.TotalPrice).
		Str("transaction_id", transactionID).
		Msg("checkout completed")
	return o, nil
}

func (s *Service) price(ctx context.Context, c cart.Cart, transactionID string) (Order, error) {
	entries, err := s.carts.Entries(ctx, c)
	if err != nil {
		return Order{}, err
	}
	today := s.now()
	subtotal, err := cart.Total(c, entries, today)
	if err != nil {
		return Order{}, err
	}

	var discount int64
	if s.policy == PriceWithCoupon {
		cp, err := s.carts.Coupon(ctx, c)
		if err != nil {
			return Order{}, err
		}
		discount = cart.Discount(c, subtotal, cp, today)
	}
	return Order{
		CustomerID:    c.CustomerID,
		Subtotal:      subtotal,
		Discount:      discount,
		TotalPrice:    subtotal - discount,
		TransactionID: transactionID,
		Status:        StatusPending,
	}, nil
}

// List returns the customer's orders, newest first.
func (s *Service) List(ctx context.Context, customerID int64) ([]Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

func (s *Service) Get(ctx context.Context, customerID, orderID int64) (Order, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.CustomerID != customerID {
		return Order{}, ErrNotOwner
	}
	return o, nil
}

// ConfirmPayment marks the order paid once the payment provider confirms it.
// Confirming an order that is already paid is a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, customerID, orderID int64) (Order, error) {
	o, err := s.Get(ctx, customerID, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status == StatusPaid {
		return o, nil
	}
	ok, err := s.payments.ConfirmPayment(ctx, o)
	if err != nil {
		return Order{}, errors.Wrap(err, "confirm payment")
	}
	if !ok {
		return Order{}, ErrPaymentNotConfirmed
	}
	if err := s.store.UpdateStatus(ctx, o.ID, StatusPaid); err != nil {
		return Order{}, err
	}
	o.Status = StatusPaid
	logging.FromContext(ctx, &s.log).Info().Int64("order_id", o.ID).Str("transaction_id", o.TransactionID).Msg("payment confirmed")
	return o, nil
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindAuthorization:
		return "forbidden"
	case apperr.KindConflict:
		return "conflict"
	case apperr.KindInvalidReference:
		return "invalid_reference"
	case apperr.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}
