package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

type fakePublisher struct {
	got    []Record
	failOn string
}

func (p *fakePublisher) Publish(ctx context.Context, rec Record) error {
	if rec.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.got = append(p.got, rec)
	return nil
}

var outboxColumns = []string{"id", "event_id", "topic", "key", "payload", "created_at", "sent_at"}

func TestInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(sqlmock.AnyArg(), "shop.orders", "17", []byte(`{"order_id":17}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := Insert(context.Background(), db, "shop.orders", "17", map[string]int{"order_id": 17})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid event id, got %q", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelayFlush(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM outbox").WithArgs(defaultBatch).WillReturnRows(sqlmock.NewRows(outboxColumns).
		AddRow(int64(1), "ev-1", "shop.orders", "17", []byte(`{"order_id":17}`), now, nil).
		AddRow(int64(2), "ev-2", "shop.orders", "18", []byte(`{"order_id":18}`), now, nil))
	mock.ExpectExec("UPDATE outbox SET sent_at").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE outbox SET sent_at").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))

	pub := &fakePublisher{}
	relay := NewRelay(db, pub, time.Second, zerolog.Nop(), nil)
	sent, err := relay.Flush(context.Background())
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if sent != 2 || len(pub.got) != 2 || pub.got[0].EventID != "ev-1" {
		t.Fatalf("unexpected publish order %+v", pub.got)
	}
	var payload map[string]int
	if err := json.Unmarshal(pub.got[1].Payload, &payload); err != nil || payload["order_id"] != 18 {
		t.Fatalf("payload not carried through: %s", string(pub.got[1].Payload))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelayFlush_StopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM outbox").WithArgs(defaultBatch).WillReturnRows(sqlmock.NewRows(outboxColumns).
		AddRow(int64(1), "ev-1", "shop.orders", "17", []byte(`{}`), now, nil).
		AddRow(int64(2), "ev-2", "shop.orders", "18", []byte(`{}`), now, nil))

	pub := &fakePublisher{failOn: "ev-1"}
	relay := NewRelay(db, pub, time.Second, zerolog.Nop(), nil)
	sent, err := relay.Flush(context.Background())
	if err == nil || sent != 0 || len(pub.got) != 0 {
		t.Fatalf("expected failure before any send, got sent=%d err=%v", sent, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay := NewRelay(db, &fakePublisher{}, time.Hour, zerolog.Nop(), nil)
	if err := relay.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestMessageAndBrokers(t *testing.T) {
	msg := message(Record{EventID: "ev-9", Topic: "shop.orders", Key: "9", Payload: []byte(`{}`)})
	if msg.Topic != "shop.orders" || string(msg.Key) != "9" || string(msg.Headers[0].Value) != "ev-9" {
		t.Fatalf("unexpected kafka message %+v", msg)
	}
	brokers := ParseBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(brokers) != 2 || brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", brokers)
	}
	if len(ParseBrokers("")) != 0 {
		t.Fatalf("empty csv must give no brokers")
	}
}
