package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-checkout/internal/cart"
	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/config"
	"github.com/wichananm65/shop-checkout/internal/coupon"
	"github.com/wichananm65/shop-checkout/internal/database"
	"github.com/wichananm65/shop-checkout/internal/metrics"
	"github.com/wichananm65/shop-checkout/internal/order"
	"github.com/wichananm65/shop-checkout/internal/outbox"
)

type storage struct {
	kind    string
	catalog catalog.Repository
	coupons coupon.Repository
	carts   cart.Repository
	orders  order.Store
	relay   *outbox.Relay
	close   func()
}

// openStorage picks Postgres when DATABASE_URL is set and seeded in-memory
// repositories otherwise.
func openStorage(ctx context.Context, cfg config.Config, log zerolog.Logger, m *metrics.Metrics) (storage, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL is not set, using in-memory storage with seed data")
		return memoryStorage(time.Now()), nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return storage{}, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return storage{}, err
	}

	st := storage{
		kind:    "postgres",
		catalog: catalog.NewPostgresRepository(db),
		coupons: coupon.NewPostgresRepository(db),
		carts:   cart.NewPostgresRepository(db),
		orders:  order.NewPostgresStore(db, cfg.OrderEventsTopic),
		close:   func() { db.Close() },
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Warn().Msg("KAFKA_BROKERS is not set, order events stay in the outbox")
		return st, nil
	}

	pub := outbox.NewKafkaPublisher(cfg.KafkaBrokers)
	st.relay = outbox.NewRelay(db, pub, cfg.OutboxPollInterval, log.With().Str("component", "outbox").Logger(), m)
	st.close = func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("close kafka writer")
		}
		db.Close()
	}
	return st, nil
}

func memoryStorage(now time.Time) storage {
	carts := cart.NewInMemoryRepository()
	return storage{
		kind:    "memory",
		catalog: catalog.NewInMemoryRepository(seedCatalog(now)),
		coupons: coupon.NewInMemoryRepository(seedCoupons(now)),
		carts:   carts,
		orders:  order.NewInMemoryStore(carts),
		close:   func() {},
	}
}
