package order

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/wichananm65/shop-checkout/internal/cart"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Order is the frozen result of a checkout. Prices are a snapshot taken
// when the cart was converted and never change afterwards.
type Order struct {
	ID            int64       `json:"id"`
	CustomerID    int64       `json:"customerId"`
	Subtotal      int64       `json:"subtotal"`
	Discount      int64       `json:"discount"`
	TotalPrice    int64       `json:"totalPrice"`
	TransactionID string      `json:"transactionId"`
	Status        Status      `json:"status"`
	Lines         []cart.Line `json:"lines"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// PricingPolicy decides which cart total becomes the order total.
type PricingPolicy string

const (
	// PriceWithCoupon charges the total after the attached coupon.
	PriceWithCoupon PricingPolicy = "coupon"
	// PriceFull charges the plain total and ignores any coupon.
	PriceFull PricingPolicy = "full"
)

func ParsePricingPolicy(s string) (PricingPolicy, error) {
	switch p := PricingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriceWithCoupon, nil
	case PriceWithCoupon, PriceFull:
		return p, nil
	default:
		return "", errors.Errorf("unknown checkout pricing policy %q", s)
	}
}

const EventOrderCreated = "order.created"

type EventLine struct {
	EntryID  int64 `json:"entry_id"`
	Quantity int   `json:"quantity"`
}

// CreatedEvent is published for every successful checkout.
type CreatedEvent struct {
	Type          string      `json:"type"`
	OrderID       int64       `json:"order_id"`
	CustomerID    int64       `json:"customer_id"`
	TransactionID string      `json:"transaction_id"`
	Subtotal      int64       `json:"subtotal"`
	Discount      int64       `json:"discount"`
	TotalPrice    int64       `json:"total_price"`
	Lines         []EventLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
}

func NewCreatedEvent(o Order) CreatedEvent {
	lines := make([]EventLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, EventLine{EntryID: l.EntryID, Quantity: l.Quantity})
	}
	return CreatedEvent{
		Type:          EventOrderCreated,
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		TransactionID: o.TransactionID,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		TotalPrice:    o.TotalPrice,
		Lines:         lines,
		CreatedAt:     o.CreatedAt,
	}
}
