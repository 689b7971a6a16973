package coupon

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/lib/pq"
)

// PostgresRepository reads coupons and their optional restriction set.
//
// Tables expected:
//
//	coupons(id bigserial, label text, code text unique, enabled bool,
//	        expires_on date, discount numeric(5,4))
//	coupon_entries(coupon_id bigint, entry_id bigint)
type PostgresRepository struct {
	db *sql.DB
}

const (
	selectCoupon = `
		SELECT c.id, c.label, c.code, c.enabled, c.expires_on, c.discount,
		       COALESCE(array_agg(ce.entry_id ORDER BY ce.entry_id) FILTER (WHERE ce.entry_id IS NOT NULL), '{}')
		FROM coupons c
		LEFT JOIN coupon_entries ce ON ce.coupon_id = c.id
	`
	getCouponByCodeQuery = selectCoupon + `WHERE c.code = $1 GROUP BY c.id`
	getCouponByIDQuery   = selectCoupon + `WHERE c.id = $1 GROUP BY c.id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (Coupon, error) {
	return r.get(ctx, getCouponByCodeQuery, code)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Coupon, error) {
	return r.get(ctx, getCouponByIDQuery, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg interface{}) (Coupon, error) {
	var (
		c       Coupon
		entries pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Label, &c.Code, &c.Enabled, &c.ExpiresOn, &c.Discount, &entries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		return Coupon{}, errors.Wrap(err, "get coupon")
	}
	if len(entries) > 0 {
		c.EntryIDs = []int64(entries)
	}
	return c, nil
}
