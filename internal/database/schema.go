package database

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
)

// schema is applied at startup; every statement is idempotent.
// cart_lines.entry_id deliberately has no foreign key: the catalog is owned
// elsewhere and a vanished entry must surface as an invalid reference when
// the line is priced.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_entries (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		base_price BIGINT NOT NULL CHECK (base_price >= 0),
		promo_price BIGINT CHECK (promo_price >= 0),
		promo_start DATE,
		promo_end DATE,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		stock INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id BIGSERIAL PRIMARY KEY,
		label TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		expires_on DATE NOT NULL,
		discount NUMERIC(5,4) NOT NULL CHECK (discount >= 0 AND discount <= 1)
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_entries (
		coupon_id BIGINT NOT NULL REFERENCES coupons(id) ON DELETE CASCADE,
		entry_id BIGINT NOT NULL,
		PRIMARY KEY (coupon_id, entry_id)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		coupon_id BIGINT REFERENCES coupons(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS carts_active_session_idx ON carts (customer_id, session_id) WHERE active`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		subtotal BIGINT NOT NULL,
		discount BIGINT NOT NULL DEFAULT 0,
		total_price BIGINT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		id BIGSERIAL PRIMARY KEY,
		entry_id BIGINT NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 1),
		cart_id BIGINT REFERENCES carts(id) ON DELETE CASCADE,
		order_id BIGINT REFERENCES orders(id),
		CHECK ((cart_id IS NULL) <> (order_id IS NULL)),
		UNIQUE (cart_id, entry_id)
	)`,
	`CREATE INDEX IF NOT EXISTS cart_lines_order_idx ON cart_lines (order_id)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id BIGSERIAL PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		topic TEXT NOT NULL,
		key TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables this service reads and writes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}
