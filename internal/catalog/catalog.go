package catalog

import "time"

// Entry is a sellable item. Prices are integers in the smallest currency unit.
// PromoStart and PromoEnd are calendar dates; only their year/month/day matter.
type Entry struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	BasePrice  int64      `json:"basePrice"`
	PromoPrice *int64     `json:"promoPrice,omitempty"`
	PromoStart *time.Time `json:"promoStart,omitempty"`
	PromoEnd   *time.Time `json:"promoEnd,omitempty"`
	Available  bool       `json:"available"`
	Stock      int        `json:"stock"`
}

// Priced is the catalog detail shape returned by the API: the entry plus the
// price a customer would pay today.
type Priced struct {
	Entry
	UnitPrice   int64 `json:"unitPrice"`
	PromoActive bool  `json:"promoActive"`
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsPromotionActive reports whether the promotional window of e covers today.
// Both window dates must be set; a promotional price without dates is never
// active. The window is inclusive on both ends.
func IsPromotionActive(e Entry, today time.Time) bool {
	if e.PromoStart == nil || e.PromoEnd == nil {
		return false
	}
	day := Day(today)
	return !day.Before(Day(*e.PromoStart)) && !day.After(Day(*e.PromoEnd))
}

// UnitPrice is the promotional price while the promotion is active, the base
// price otherwise.
func UnitPrice(e Entry, today time.Time) int64 {
	if e.PromoPrice != nil && IsPromotionActive(e, today) {
		return *e.PromoPrice
	}
	return e.BasePrice
}

func WithPrice(e Entry, today time.Time) Priced {
	return Priced{
		Entry:       e,
		UnitPrice:   UnitPrice(e, today),
		PromoActive: e.PromoPrice != nil && IsPromotionActive(e, today),
	}
}
