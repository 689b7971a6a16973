package config

import (
	"testing"
	"time"

	"github.com/wichananm65/shop-checkout/internal/order"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHOP_ADDR", "")
	t.Setenv("CHECKOUT_PRICING", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("OUTBOX_POLL_INTERVAL", "")
	t.Setenv("PAYMENT_TIMEOUT", "")
	t.Setenv("ORDER_EVENTS_TOPIC", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Pricing != order.PriceWithCoupon || cfg.OrderEventsTopic != "shop.orders" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.OutboxPollInterval != 2*time.Second || cfg.PaymentTimeout != 3*time.Second || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHOP_ADDR", ":9090")
	t.Setenv("CHECKOUT_PRICING", "full")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("PAYMENT_TIMEOUT", " 750ms ")
	t.Setenv("PAYMENT_BASE_URL", "http://payments.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Pricing != order.PriceFull || len(cfg.KafkaBrokers) != 2 || cfg.OutboxPollInterval != 500*time.Millisecond {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.PaymentTimeout != 750*time.Millisecond || cfg.PaymentBaseURL != "http://payments.local" {
		t.Fatalf("payment overrides not applied %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"CHECKOUT_PRICING", "half"},
		{"OUTBOX_POLL_INTERVAL", "soon"},
		{"PAYMENT_TIMEOUT", "-1s"},
		{"JWT_SECRET", ""},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv("CHECKOUT_PRICING", "")
			t.Setenv("OUTBOX_POLL_INTERVAL", "")
			t.Setenv("PAYMENT_TIMEOUT", "")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
