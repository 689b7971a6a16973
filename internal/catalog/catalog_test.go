package catalog

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptrInt64(v int64) *int64 { return &v }

func TestIsPromotionActive(t *testing.T) {
	today := time.Date(2026, 10, 15, 17, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"window covers today", Entry{PromoStart: date(2026, 10, 14), PromoEnd: date(2026, 10, 22)}, true},
		{"starts today", Entry{PromoStart: date(2026, 10, 15), PromoEnd: date(2026, 10, 20)}, true},
		{"ends today", Entry{PromoStart: date(2026, 10, 1), PromoEnd: date(2026, 10, 15)}, true},
		{"expired", Entry{PromoStart: date(2026, 10, 5), PromoEnd: date(2026, 10, 14)}, false},
		{"not started", Entry{PromoStart: date(2026, 10, 16), PromoEnd: date(2026, 10, 30)}, false},
		{"no dates with promo price", Entry{PromoPrice: ptrInt64(3000)}, false},
		{"start only", Entry{PromoPrice: ptrInt64(3000), PromoStart: date(2026, 10, 1)}, false},
		{"end only", Entry{PromoPrice: ptrInt64(3000), PromoEnd: date(2026, 10, 30)}, false},
	}
	for _, tc := range cases {
		if got := IsPromotionActive(tc.entry, today); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestUnitPrice(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	promo := Entry{BasePrice: 5000, PromoPrice: ptrInt64(3500), PromoStart: date(2026, 10, 14), PromoEnd: date(2026, 10, 22)}
	if got := UnitPrice(promo, today); got != 3500 {
		t.Fatalf("expected promotional price 3500, got %d", got)
	}

	expired := promo
	expired.PromoEnd = date(2026, 10, 14)
	if got := UnitPrice(expired, today); got != 5000 {
		t.Fatalf("expected base price after promotion ended, got %d", got)
	}

	// dates without a promotional price fall back to the base price
	datesOnly := Entry{BasePrice: 1200, PromoStart: date(2026, 10, 1), PromoEnd: date(2026, 10, 31)}
	if got := UnitPrice(datesOnly, today); got != 1200 {
		t.Fatalf("expected base price when no promo price is set, got %d", got)
	}
	if p := WithPrice(datesOnly, today); p.PromoActive {
		t.Fatalf("entry without promo price must not be shown as on promotion")
	}
}
