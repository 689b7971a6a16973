package order

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/lib/pq"
	"github.com/wichananm65/shop-checkout/internal/cart"
	"github.com/wichananm65/shop-checkout/internal/database"
	"github.com/wichananm65/shop-checkout/internal/outbox"
)

// PostgresStore runs checkout as one transaction that holds a row lock on
// the cart. A second checkout of the same cart waits on the lock and then
// finds the cart gone.
type PostgresStore struct {
	db    *sql.DB
	topic string
}

const (
	insertOrderQuery = `
		INSERT INTO orders (customer_id, subtotal, discount, total_price, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	moveLinesQuery  = `UPDATE cart_lines SET cart_id = NULL, order_id = $1 WHERE cart_id = $2`
	deleteCartQuery = `DELETE FROM carts WHERE id = $1`

	selectOrder = `
		SELECT id, customer_id, subtotal, discount, total_price, transaction_id, status, created_at
		FROM orders
	`
	listOrdersQuery = selectOrder + `WHERE customer_id = $1 ORDER BY id DESC`
	getOrderQuery   = selectOrder + `WHERE id = $1`

	orderLinesQuery = `
		SELECT id, entry_id, quantity, order_id
		FROM cart_lines
		WHERE order_id = ANY($1::bigint[])
		ORDER BY id
	`
	updateStatusQuery = `UPDATE orders SET status = $2 WHERE id = $1`
)

func NewPostgresStore(db *sql.DB, topic string) *PostgresStore {
	return &PostgresStore{db: db, topic: topic}
}

func (s *PostgresStore) Checkout(ctx context.Context, cartID int64, price PriceFunc) (Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, errors.Wrap(err, "begin checkout")
	}
	defer func() { _ = tx.Rollback() }()

	c, err := cart.Load(ctx, tx, cartID, true)
	if err != nil {
		return Order{}, err
	}
	o, err := price(c)
	if err != nil {
		return Order{}, err
	}

	err = tx.QueryRowContext(ctx, insertOrderQuery,
		o.CustomerID, o.Subtotal, o.Discount, o.TotalPrice, o.TransactionID, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Order{}, ErrDuplicateTransaction
		}
		return Order{}, errors.Wrap(err, "insert order")
	}

	if _, err := tx.ExecContext(ctx, moveLinesQuery, o.ID, c.ID); err != nil {
		return Order{}, errors.Wrap(err, "move cart lines")
	}
	o.Lines = make([]cart.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		id := o.ID
		l.CartID = nil
		l.OrderID = &id
		o.Lines = append(o.Lines, l)
	}

	if _, err := outbox.Insert(ctx, tx, s.topic, strconv.FormatInt(o.ID, 10), NewCreatedEvent(o)); err != nil {
		return Order{}, err
	}
	if _, err := tx.ExecContext(ctx, deleteCartQuery, c.ID); err != nil {
		return Order{}, errors.Wrap(err, "delete cart")
	}
	if err := tx.Commit(); err != nil {
		return Order{}, errors.Wrap(err, "commit checkout")
	}
	return o, nil
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, listOrdersQuery, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	if err := s.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, getOrderQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	orders := []Order{o}
	if err := s.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status Status) error {
	res, err := s.db.ExecContext(ctx, updateStatusQuery, id, string(status))
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// attachLines loads the lines of all orders with one query.
func (s *PostgresStore) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		orders[i].Lines = []cart.Line{}
		ids = append(ids, orders[i].ID)
		index[orders[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx, orderLinesQuery, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "query order lines")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       cart.Line
			orderID int64
		)
		if err := rows.Scan(&l.ID, &l.EntryID, &l.Quantity, &orderID); err != nil {
			return errors.Wrap(err, "scan order line")
		}
		l.OrderID = &orderID
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate order lines")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o      Order
		status string
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &o.Subtotal, &o.Discount, &o.TotalPrice, &o.TransactionID, &status, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, err
		}
		return Order{}, errors.Wrap(err, "scan order")
	}
	o.Status = Status(status)
	return o, nil
}
