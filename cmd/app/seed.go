package main

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/coupon"
)

// seedCatalog is loaded when the service runs without a database.
func seedCatalog(now time.Time) []catalog.Entry {
	day := func(offset int) *time.Time {
		d := catalog.Day(now).AddDate(0, 0, offset)
		return &d
	}
	price := func(v int64) *int64 { return &v }

	return []catalog.Entry{
		{ID: 1, Name: "Dog Food 2kg", BasePrice: 1000, Available: true, Stock: 40},
		{ID: 2, Name: "Cat Litter 10L", BasePrice: 2000, Available: true, Stock: 25},
		{ID: 3, Name: "Scratching Post", BasePrice: 5000, PromoPrice: price(3500), PromoStart: day(-7), PromoEnd: day(7), Available: true, Stock: 8},
		{ID: 4, Name: "Bird Cage", BasePrice: 12000, PromoPrice: price(9900), PromoStart: day(10), PromoEnd: day(20), Available: true, Stock: 2},
		{ID: 5, Name: "Aquarium Filter", BasePrice: 4500, Available: false},
	}
}

func seedCoupons(now time.Time) []coupon.Coupon {
	return []coupon.Coupon{
		{ID: 1, Label: "Welcome", Code: "PROMO10", Enabled: true, ExpiresOn: now.AddDate(0, 1, 0), Discount: decimal.RequireFromString("0.10")},
		{ID: 2, Label: "Scratching posts", Code: "SCRATCH20", Enabled: true, ExpiresOn: now.AddDate(0, 1, 0), Discount: decimal.RequireFromString("0.20"), EntryIDs: []int64{3}},
		{ID: 3, Label: "Last season", Code: "SUMMER", Enabled: true, ExpiresOn: now.AddDate(0, -1, 0), Discount: decimal.RequireFromString("0.25")},
	}
}
