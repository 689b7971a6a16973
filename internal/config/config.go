package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/wichananm65/shop-checkout/internal/order"
	"github.com/wichananm65/shop-checkout/internal/outbox"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	LogLevel           string
	LogFormat          string
	Pricing            order.PricingPolicy
	KafkaBrokers       []string
	OrderEventsTopic   string
	OutboxPollInterval time.Duration
	PaymentBaseURL     string
	PaymentTimeout     time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("shop_addr", ":8080")
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("checkout_pricing", string(order.PriceWithCoupon))
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("order_events_topic", "shop.orders")
	v.SetDefault("outbox_poll_interval", 2*time.Second)
	v.SetDefault("payment_base_url", "")
	v.SetDefault("payment_timeout", 3*time.Second)
}

// Load reads the configuration from the environment. Unset or empty
// variables take their defaults; malformed values are errors.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }
	cfg := Config{
		Addr:             str("shop_addr"),
		DatabaseURL:      str("database_url"),
		JWTSecret:        str("jwt_secret"),
		LogLevel:         str("log_level"),
		LogFormat:        str("log_format"),
		KafkaBrokers:     outbox.ParseBrokers(str("kafka_brokers")),
		OrderEventsTopic: str("order_events_topic"),
		PaymentBaseURL:   str("payment_base_url"),
	}

	var err error
	if cfg.Pricing, err = order.ParsePricingPolicy(str("checkout_pricing")); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = duration(v, "outbox_poll_interval"); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = duration(v, "payment_timeout"); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("%s: invalid duration %q", strings.ToUpper(key), cast.ToString(raw))
	}
	return d, nil
}
