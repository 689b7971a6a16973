// Package payment asks the payment provider whether a checkout transaction
// was settled.
package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/wichananm65/shop-checkout/internal/order"
)

// HTTPConfirmer looks up GET {base}/transactions/{id} on the provider.
type HTTPConfirmer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPConfirmer(baseURL string, timeout time.Duration) *HTTPConfirmer {
	return &HTTPConfirmer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type transaction struct {
	Status string `json:"status"`
	Amount *int64 `json:"amount"`
}

var settled = map[string]bool{"paid": true, "captured": true, "succeeded": true}

// ConfirmPayment reports true when the provider knows the transaction as
// settled for the order total. An unknown transaction is not an error.
func (p *HTTPConfirmer) ConfirmPayment(ctx context.Context, o order.Order) (bool, error) {
	endpoint := p.baseURL + "/transactions/" + url.PathEscape(o.TransactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, errors.Wrap(err, "build payment request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "call payment provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var tx transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return false, errors.Wrap(err, "decode payment response")
	}
	if !settled[strings.ToLower(tx.Status)] {
		return false, nil
	}
	if tx.Amount != nil && *tx.Amount != o.TotalPrice {
		return false, nil
	}
	return true, nil
}

// Disabled never confirms a payment. It is used when no provider is
// configured.
type Disabled struct{}

func (Disabled) ConfirmPayment(ctx context.Context, o order.Order) (bool, error) {
	return false, nil
}
