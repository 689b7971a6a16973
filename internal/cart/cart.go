package cart

import (
	"time"

	"github.com/wichananm65/shop-checkout/internal/apperr"
	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/coupon"
)

// Line is a quantity of one catalog entry. A line belongs to exactly one of a
// cart or an order; checkout moves it from the first to the second.
type Line struct {
	ID       int64  `json:"id"`
	EntryID  int64  `json:"entryId"`
	Quantity int    `json:"quantity"`
	CartID   *int64 `json:"cartId,omitempty"`
	OrderID  *int64 `json:"orderId,omitempty"`
}

// Cart is the active basket of a customer session.
type Cart struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customerId"`
	SessionID  string    `json:"sessionId"`
	Active     bool      `json:"active"`
	CouponID   *int64    `json:"couponId,omitempty"`
	Lines      []Line    `json:"lines"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// EntryIDs lists the distinct entries referenced by the cart lines.
func (c Cart) EntryIDs() []int64 {
	seen := make(map[int64]bool, len(c.Lines))
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		if !seen[l.EntryID] {
			seen[l.EntryID] = true
			ids = append(ids, l.EntryID)
		}
	}
	return ids
}

// LineSubtotal is quantity times the entry's unit price on today.
// A nil entry means the line points at something the catalog no longer has.
func LineSubtotal(l Line, e *catalog.Entry, today time.Time) (int64, error) {
	if e == nil {
		return 0, apperr.InvalidReferencef("cart line %d references missing catalog entry %d", l.ID, l.EntryID)
	}
	return int64(l.Quantity) * catalog.UnitPrice(*e, today), nil
}

// Total sums the line subtotals of c, resolving entries from entries.
func Total(c Cart, entries map[int64]catalog.Entry, today time.Time) (int64, error) {
	var total int64
	for _, l := range c.Lines {
		var entry *catalog.Entry
		if e, ok := entries[l.EntryID]; ok {
			entry = &e
		}
		sub, err := LineSubtotal(l, entry, today)
		if err != nil {
			return 0, err
		}
		total += sub
	}
	return total, nil
}

// Qualifies reports whether c holds a line cp applies to. Unrestricted
// coupons qualify for any cart.
func Qualifies(c Cart, cp coupon.Coupon) bool {
	if !cp.Restricted() {
		return true
	}
	for _, l := range c.Lines {
		if cp.AppliesTo(l.EntryID) {
			return true
		}
	}
	return false
}

// Discount is what cp takes off the total of c today. A missing or
// unredeemable coupon discounts nothing, and so does a restricted coupon once
// c no longer holds any of its entries.
func Discount(c Cart, total int64, cp *coupon.Coupon, today time.Time) int64 {
	if cp == nil || !cp.IsRedeemable(today) || !Qualifies(c, *cp) {
		return 0
	}
	return cp.DiscountOn(total)
}

func TotalWithCoupon(c Cart, entries map[int64]catalog.Entry, cp *coupon.Coupon, today time.Time) (int64, error) {
	total, err := Total(c, entries, today)
	if err != nil {
		return 0, err
	}
	return total - Discount(c, total, cp, today), nil
}
