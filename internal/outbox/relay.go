package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-checkout/internal/metrics"
)

const defaultBatch = 100

// Relay polls the outbox and publishes pending records in id order. A record
// is marked sent only after the publisher accepted it, so delivery is at
// least once.
type Relay struct {
	db       *sql.DB
	pub      Publisher
	interval time.Duration
	batch    int
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewRelay(db *sql.DB, pub Publisher, interval time.Duration, log zerolog.Logger, m *metrics.Metrics) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{db: db, pub: pub, interval: interval, batch: defaultBatch, log: log, metrics: m}
}

// Run flushes the outbox every interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("outbox relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.log.Warn().Err(err).Msg("outbox flush failed")
			}
		}
	}
}

// Flush publishes one batch and reports how many records were sent. It stops
// at the first failure so later events never overtake an earlier one.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	records, err := FetchPending(ctx, r.db, r.batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range records {
		if err := r.pub.Publish(ctx, rec); err != nil {
			r.metrics.Outbox("failed")
			return sent, err
		}
		if err := MarkSent(ctx, r.db, rec.ID); err != nil {
			return sent, err
		}
		r.metrics.Outbox("sent")
		r.log.Debug().Str("event_id", rec.EventID).Str("topic", rec.Topic).Msg("outbox record published")
		sent++
	}
	return sent, nil
}
