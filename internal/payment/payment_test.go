package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wichananm65/shop-checkout/internal/order"
)

func provider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions/TXN-PAID", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"captured","amount":1800}`))
	})
	mux.HandleFunc("/transactions/TXN-OPEN", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"authorized","amount":1800}`))
	})
	mux.HandleFunc("/transactions/TXN-BROKEN", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPConfirmer(t *testing.T) {
	srv := provider(t)
	p := NewHTTPConfirmer(srv.URL+"/", time.Second)
	ctx := context.Background()

	cases := []struct {
		txn   string
		total int64
		want  bool
	}{
		{"TXN-PAID", 1800, true},
		{"TXN-PAID", 2000, false},
		{"TXN-OPEN", 1800, false},
		{"TXN-UNKNOWN", 1800, false},
	}
	for _, tc := range cases {
		got, err := p.ConfirmPayment(ctx, order.Order{TransactionID: tc.txn, TotalPrice: tc.total})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.txn, err)
		}
		if got != tc.want {
			t.Errorf("%s/%d: expected %v, got %v", tc.txn, tc.total, tc.want, got)
		}
	}

	if _, err := p.ConfirmPayment(ctx, order.Order{TransactionID: "TXN-BROKEN"}); err == nil {
		t.Fatalf("expected error for provider failure")
	}
}

func TestDisabled(t *testing.T) {
	ok, err := Disabled{}.ConfirmPayment(context.Background(), order.Order{TransactionID: "TXN-PAID"})
	if ok || err != nil {
		t.Fatalf("disabled confirmer must refuse, got %v %v", ok, err)
	}
}
