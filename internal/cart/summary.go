package cart

import (
	"context"

	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/coupon"
)

// LineView is a cart line priced for display.
type LineView struct {
	Line
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unitPrice"`
	PromoActive bool   `json:"promoActive"`
	Subtotal    int64  `json:"subtotal"`
}

// Summary is the cart page: priced lines, totals and the attached coupon.
type Summary struct {
	ID              int64          `json:"id"`
	CustomerID      int64          `json:"customerId"`
	SessionID       string         `json:"sessionId"`
	Empty           bool           `json:"empty"`
	Lines           []LineView     `json:"lines"`
	Total           int64          `json:"total"`
	Coupon          *coupon.Coupon `json:"coupon,omitempty"`
	Discount        int64          `json:"discount"`
	TotalWithCoupon int64          `json:"totalWithCoupon"`
}

func (s *Service) Summary(ctx context.Context, customerID, cartID int64) (Summary, error) {
	c, err := s.owned(ctx, customerID, cartID)
	if err != nil {
		return Summary{}, err
	}
	return s.Describe(ctx, c)
}

// Describe prices an already loaded cart.
func (s *Service) Describe(ctx context.Context, c Cart) (Summary, error) {
	entries, err := s.Entries(ctx, c)
	if err != nil {
		return Summary{}, err
	}
	cp, err := s.Coupon(ctx, c)
	if err != nil {
		return Summary{}, err
	}

	today := s.now()
	sum := Summary{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		SessionID:  c.SessionID,
		Empty:      c.IsEmpty(),
		Lines:      make([]LineView, 0, len(c.Lines)),
		Coupon:     cp,
	}
	for _, l := range c.Lines {
		var entry *catalog.Entry
		if e, ok := entries[l.EntryID]; ok {
			entry = &e
		}
		sub, err := LineSubtotal(l, entry, today)
		if err != nil {
			return Summary{}, err
		}
		priced := catalog.WithPrice(*entry, today)
		sum.Lines = append(sum.Lines, LineView{
			Line:        l,
			Name:        entry.Name,
			UnitPrice:   priced.UnitPrice,
			PromoActive: priced.PromoActive,
			Subtotal:    sub,
		})
		sum.Total += sub
	}
	sum.Discount = Discount(c, sum.Total, cp, today)
	sum.TotalWithCoupon = sum.Total - sum.Discount
	return sum, nil
}
