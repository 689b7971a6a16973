package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wichananm65/shop-checkout/internal/cart"
)

var (
	cartColumns  = []string{"id", "customer_id", "session_id", "active", "coupon_id", "created_at"}
	lineColumns  = []string{"id", "entry_id", "quantity"}
	orderColumns = []string{"id", "customer_id", "subtotal", "discount", "total_price", "transaction_id", "status", "created_at"}
)

// flatPrice prices every unit at 1000 for the owner 42.
func flatPrice(c cart.Cart) (Order, error) {
	if c.CustomerID != 42 {
		return Order{}, ErrNotOwner
	}
	var total int64
	for _, l := range c.Lines {
		total += int64(l.Quantity) * 1000
	}
	return Order{CustomerID: c.CustomerID, Subtotal: total, TotalPrice: total, TransactionID: "TXN-1", Status: StatusPending}, nil
}

func expectLockedCart(mock sqlmock.Sqlmock, owner int64) {
	mock.ExpectBegin()
	mock.ExpectQuery("FROM carts WHERE id = \\$1 FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cartColumns).AddRow(int64(5), owner, "sess", true, nil, time.Now()))
	mock.ExpectQuery("FROM cart_lines").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lineColumns).AddRow(int64(10), int64(1), 2).AddRow(int64(11), int64(2), 1))
}

func TestPostgresCheckout_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db, "shop.orders")

	created := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	expectLockedCart(mock, 42)
	mock.ExpectQuery("INSERT INTO orders").WithArgs(42, 3000, 0, 3000, "TXN-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(17), created))
	mock.ExpectExec("UPDATE cart_lines SET cart_id = NULL, order_id = \\$1 WHERE cart_id = \\$2").WithArgs(17, 5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO outbox").WithArgs(sqlmock.AnyArg(), "shop.orders", "17", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM carts").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := store.Checkout(context.Background(), 5, flatPrice)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if o.ID != 17 || o.TotalPrice != 3000 || !o.CreatedAt.Equal(created) {
		t.Fatalf("unexpected order %+v", o)
	}
	if len(o.Lines) != 2 || o.Lines[0].CartID != nil || *o.Lines[1].OrderID != 17 {
		t.Fatalf("lines not re-parented: %+v", o.Lines)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCheckout_RollsBack(t *testing.T) {
	cases := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		want  error
	}{
		{
			name: "missing cart",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs(5).WillReturnRows(sqlmock.NewRows(cartColumns))
				mock.ExpectRollback()
			},
			want: cart.ErrCartNotFound,
		},
		{
			name: "other customer",
			setup: func(mock sqlmock.Sqlmock) {
				expectLockedCart(mock, 7)
				mock.ExpectRollback()
			},
			want: ErrNotOwner,
		},
		{
			name: "duplicate transaction",
			setup: func(mock sqlmock.Sqlmock) {
				expectLockedCart(mock, 42)
				mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
				mock.ExpectRollback()
			},
			want: ErrDuplicateTransaction,
		},
		{
			name: "outbox failure",
			setup: func(mock sqlmock.Sqlmock) {
				expectLockedCart(mock, 42)
				mock.ExpectQuery("INSERT INTO orders").
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(17), time.Now()))
				mock.ExpectExec("UPDATE cart_lines").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO outbox").WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
		},
	}
	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock error: %v", err)
		}
		tc.setup(mock)

		_, err = NewPostgresStore(db, "shop.orders").Checkout(context.Background(), 5, flatPrice)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("%s: unmet expectations: %v", tc.name, err)
		}
		db.Close()
	}
}

func TestPostgresListByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db, "shop.orders")

	now := time.Now()
	mock.ExpectQuery("FROM orders WHERE customer_id = \\$1").WithArgs(42).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(int64(18), int64(42), int64(2000), int64(200), int64(1800), "TXN-B", "paid", now).
			AddRow(int64(17), int64(42), int64(4000), int64(0), int64(4000), "TXN-A", "pending", now))
	mock.ExpectQuery("WHERE order_id = ANY").WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "quantity", "order_id"}).
			AddRow(int64(10), int64(1), 2, int64(17)).
			AddRow(int64(11), int64(2), 1, int64(17)).
			AddRow(int64(12), int64(1), 2, int64(18)))

	orders, err := store.ListByCustomer(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(orders) != 2 || orders[0].Status != StatusPaid || orders[0].TotalPrice != 1800 {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if len(orders[0].Lines) != 1 || len(orders[1].Lines) != 2 {
		t.Fatalf("lines attached to the wrong orders: %+v", orders)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByIDAndUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db, "shop.orders")
	ctx := context.Background()

	mock.ExpectQuery("FROM orders WHERE id = \\$1").WithArgs(99).WillReturnRows(sqlmock.NewRows(orderColumns))
	if _, err := store.GetByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status").WithArgs(17, "paid").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status").WithArgs(99, "paid").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.UpdateStatus(ctx, 17, StatusPaid); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.UpdateStatus(ctx, 99, StatusPaid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
