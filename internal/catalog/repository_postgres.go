package catalog

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	entryColumns = `id, name, base_price, promo_price, promo_start, promo_end, available, stock`

	listEntriesQuery = `
		SELECT ` + entryColumns + `
		FROM catalog_entries
		ORDER BY id
	`
	getEntryByIDQuery = `
		SELECT ` + entryColumns + `
		FROM catalog_entries
		WHERE id = $1
	`
	listEntriesByIDsQuery = `
		SELECT ` + entryColumns + `
		FROM catalog_entries
		WHERE id = ANY($1::bigint[])
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e          Entry
		promoPrice sql.NullInt64
		promoStart sql.NullTime
		promoEnd   sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Name, &e.BasePrice, &promoPrice, &promoStart, &promoEnd, &e.Available, &e.Stock); err != nil {
		return Entry{}, err
	}
	if promoPrice.Valid {
		v := promoPrice.Int64
		e.PromoPrice = &v
	}
	if promoStart.Valid {
		v := Day(promoStart.Time)
		e.PromoStart = &v
	}
	if promoEnd.Valid {
		v := Day(promoEnd.Time)
		e.PromoEnd = &v
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, listEntriesQuery)
	if err != nil {
		return nil, errors.Wrap(err, "list catalog entries")
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan catalog entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, getEntryByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, errors.Wrapf(err, "get catalog entry %d", id)
	}
	return e, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]Entry, error) {
	out := make(map[int64]Entry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, listEntriesByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "list catalog entries by id")
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan catalog entry")
		}
		out[e.ID] = e
	}
	return out, rows.Err()
}
