package coupon

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/shop-checkout/internal/catalog"
)

// Coupon is a percentage discount code. Coupons are created by an
// administrator and are never consumed: a cart only holds a reference.
type Coupon struct {
	ID        int64           `json:"id"`
	Label     string          `json:"label"`
	Code      string          `json:"code"`
	Enabled   bool            `json:"enabled"`
	ExpiresOn time.Time       `json:"expiresOn"`
	Discount  decimal.Decimal `json:"discount"` // fraction in [0,1]
	EntryIDs  []int64         `json:"entryIds,omitempty"`
}

// IsRedeemable reports whether the coupon can be used on the given day.
// There is no start date; a coupon expiring today is still redeemable.
func (c Coupon) IsRedeemable(today time.Time) bool {
	return c.Enabled && !catalog.Day(c.ExpiresOn).Before(catalog.Day(today))
}

// Restricted reports whether the coupon only applies to specific entries.
func (c Coupon) Restricted() bool {
	return len(c.EntryIDs) > 0
}

func (c Coupon) AppliesTo(entryID int64) bool {
	if !c.Restricted() {
		return true
	}
	for _, id := range c.EntryIDs {
		if id == entryID {
			return true
		}
	}
	return false
}

// DiscountOn returns the discount for total, truncated to a whole minor unit.
// Fractions outside [0,1] are clamped so the result never exceeds total.
func (c Coupon) DiscountOn(total int64) int64 {
	if total <= 0 {
		return 0
	}
	fraction := c.Discount
	if fraction.IsNegative() {
		fraction = decimal.Zero
	}
	if fraction.GreaterThan(decimal.NewFromInt(1)) {
		fraction = decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(total).Mul(fraction).Floor().IntPart()
}
