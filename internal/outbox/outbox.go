// Package outbox stores domain events next to the rows that produced them and
// relays them to Kafka afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/wichananm65/shop-checkout/internal/database"
)

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

const (
	insertQuery       = `INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`
	markSentQuery     = `UPDATE outbox SET sent_at = now() WHERE id = $1`
	fetchPendingQuery = `
		SELECT id, event_id, topic, key, payload, created_at, sent_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
	`
)

// Insert queues payload on topic through q, which is normally the
// transaction that wrote the event's source rows. It returns the event id.
func Insert(ctx context.Context, q database.Querier, topic, key string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal outbox payload")
	}
	eventID := uuid.NewString()
	if _, err := q.ExecContext(ctx, insertQuery, eventID, topic, key, data); err != nil {
		return "", errors.Wrap(err, "insert outbox record")
	}
	return eventID, nil
}

func MarkSent(ctx context.Context, q database.Querier, id int64) error {
	if _, err := q.ExecContext(ctx, markSentQuery, id); err != nil {
		return errors.Wrap(err, "mark outbox record sent")
	}
	return nil
}

func FetchPending(ctx context.Context, q database.Querier, limit int) ([]Record, error) {
	rows, err := q.QueryContext(ctx, fetchPendingQuery, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query outbox")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, errors.Wrap(err, "scan outbox record")
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	return out, rows.Err()
}
