package cart

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/wichananm65/shop-checkout/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	createCartQuery = `
		INSERT INTO carts (customer_id, session_id, active)
		VALUES ($1, $2, TRUE)
		RETURNING id, created_at
	`
	findActiveCartQuery = `
		SELECT id, customer_id, session_id, active, coupon_id, created_at
		FROM carts
		WHERE customer_id = $1 AND session_id = $2 AND active
		ORDER BY id DESC
		LIMIT 1
	`
	getCartQuery = `
		SELECT id, customer_id, session_id, active, coupon_id, created_at
		FROM carts
		WHERE id = $1
	`
	getCartLinesQuery = `
		SELECT id, entry_id, quantity
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY id
	`
	upsertLineQuery = `
		INSERT INTO cart_lines (cart_id, entry_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, entry_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id, entry_id, quantity
	`
	updateLineQuantityQuery = `
		UPDATE cart_lines SET quantity = $3
		WHERE cart_id = $1 AND entry_id = $2
		RETURNING id, entry_id, quantity
	`
	deleteLineQuery = `DELETE FROM cart_lines WHERE cart_id = $1 AND id = $2`
	setCouponQuery  = `UPDATE carts SET coupon_id = $2 WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, customerID int64, sessionID string) (Cart, error) {
	c := Cart{CustomerID: customerID, SessionID: sessionID, Active: true, Lines: []Line{}}
	if err := r.db.QueryRowContext(ctx, createCartQuery, customerID, sessionID).Scan(&c.ID, &c.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return Cart{}, ErrActiveCartExists
		}
		return Cart{}, errors.Wrap(err, "create cart")
	}
	return c, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, customerID int64, sessionID string) (Cart, error) {
	c, err := scanCart(r.db.QueryRowContext(ctx, findActiveCartQuery, customerID, sessionID))
	if err != nil {
		return Cart{}, err
	}
	if c.Lines, err = loadLines(ctx, r.db, c.ID); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Cart, error) {
	return Load(ctx, r.db, id, false)
}

func (r *PostgresRepository) UpsertLine(ctx context.Context, cartID, entryID int64, quantity int) (Line, error) {
	l, err := scanLine(r.db.QueryRowContext(ctx, upsertLineQuery, cartID, entryID, quantity), cartID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return Line{}, ErrCartNotFound
		}
		return Line{}, errors.Wrap(err, "upsert cart line")
	}
	return l, nil
}

func (r *PostgresRepository) UpdateLineQuantity(ctx context.Context, cartID, entryID int64, quantity int) (Line, error) {
	l, err := scanLine(r.db.QueryRowContext(ctx, updateLineQuantityQuery, cartID, entryID, quantity), cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, errors.Wrap(err, "update cart line")
	}
	return l, nil
}

func (r *PostgresRepository) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	res, err := r.db.ExecContext(ctx, deleteLineQuery, cartID, lineID)
	if err != nil {
		return errors.Wrap(err, "delete cart line")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *PostgresRepository) SetCoupon(ctx context.Context, cartID, couponID int64) error {
	res, err := r.db.ExecContext(ctx, setCouponQuery, cartID, couponID)
	if err != nil {
		return errors.Wrap(err, "set cart coupon")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartNotFound
	}
	return nil
}

// Load reads a cart with its lines through q. With forUpdate the cart row is
// locked until q's transaction ends.
func Load(ctx context.Context, q database.Querier, id int64, forUpdate bool) (Cart, error) {
	query := getCartQuery
	if forUpdate {
		query += " FOR UPDATE"
	}
	c, err := scanCart(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return Cart{}, err
	}
	if c.Lines, err = loadLines(ctx, q, c.ID); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func scanCart(row *sql.Row) (Cart, error) {
	var (
		c        Cart
		couponID sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.CustomerID, &c.SessionID, &c.Active, &couponID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, errors.Wrap(err, "scan cart")
	}
	if couponID.Valid {
		id := couponID.Int64
		c.CouponID = &id
	}
	return c, nil
}

func loadLines(ctx context.Context, q database.Querier, cartID int64) ([]Line, error) {
	rows, err := q.QueryContext(ctx, getCartLinesQuery, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "query cart lines")
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		l := Line{}
		if err := rows.Scan(&l.ID, &l.EntryID, &l.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		id := cartID
		l.CartID = &id
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cart lines")
	}
	return lines, nil
}

func scanLine(row *sql.Row, cartID int64) (Line, error) {
	l := Line{}
	if err := row.Scan(&l.ID, &l.EntryID, &l.Quantity); err != nil {
		return Line{}, err
	}
	id := cartID
	l.CartID = &id
	return l, nil
}
