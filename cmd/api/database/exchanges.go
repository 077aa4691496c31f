package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type exchangeRow struct {
	ID            uuid.UUID  `db:"id"`
	RequesterID   uuid.UUID  `db:"requester_id"`
	RequesterName string     `db:"requester_name"`
	ProviderID    uuid.UUID  `db:"provider_id"`
	ProviderName  string     `db:"provider_name"`
	BookID        uuid.UUID  `db:"book_id"`
	BookTitle     string     `db:"book_title"`
	Status        string     `db:"status"`
	RequestedAt   time.Time  `db:"requested_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	Version       int        `db:"version"`
}

var exchangeColumns = []any{"id", "requester_id", "requester_name", "provider_id", "provider_name",
	"book_id", "book_title", "status", "requested_at", "completed_at", "updated_at", "version"}

func (r exchangeRow) toExchange() book.Exchange {
	var completedAt *time.Time
	if r.CompletedAt != nil {
		c := r.CompletedAt.UTC()
		completedAt = &c
	}
	return book.Exchange{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		ProviderID:    r.ProviderID,
		ProviderName:  r.ProviderName,
		BookID:        r.BookID,
		BookTitle:     r.BookTitle,
		Status:        book.ExchangeStatus(r.Status),
		RequestedAt:   r.RequestedAt.UTC(),
		CompletedAt:   completedAt,
		UpdatedAt:     r.UpdatedAt.UTC(),
		Version:       r.Version,
	}
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (store *Store) CreateExchange(ctx context.Context, newExchange book.Exchange) (book.Exchange, error) {
	query, args, err := dialect.Insert(tableExchanges).Prepared(true).
		Rows(goqu.Record{
			"id":             newExchange.ID,
			"requester_id":   newExchange.RequesterID,
			"requester_name": newExchange.RequesterName,
			"provider_id":    newExchange.ProviderID,
			"provider_name":  newExchange.ProviderName,
			"book_id":        newExchange.BookID,
			"book_title":     newExchange.BookTitle,
			"status":         string(newExchange.Status),
			"requested_at":   newExchange.RequestedAt,
			"completed_at":   nullableTime(newExchange.CompletedAt),
			"updated_at":     newExchange.UpdatedAt,
			"version":        newExchange.Version,
		}).
		Returning(exchangeColumns...).
		ToSQL()
	if err != nil {
		return book.Exchange{}, fmt.Errorf("storing exchange on db: %w", err)
	}

	var row exchangeRow
	if err := store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return book.Exchange{}, fmt.Errorf("storing exchange on db: %w", translate(err))
	}
	return row.toExchange(), nil
}

func (store *Store) GetExchangeByID(ctx context.Context, id uuid.UUID) (book.Exchange, error) {
	query, args, err := dialect.From(tableExchanges).Prepared(true).
		Select(exchangeColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", err)
	}

	var row exchangeRow
	err = store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", book.ErrResponseExchangeNotFound)
		default:
			return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", translate(err))
		}
	}
	return row.toExchange(), nil
}

/* Moves the exchange forward when the stored version still matches. Parties and book never change. */
func (store *Store) UpdateExchange(ctx context.Context, e book.Exchange) (book.Exchange, error) {
	query, args, err := dialect.Update(tableExchanges).Prepared(true).
		Set(goqu.Record{
			"status":       string(e.Status),
			"completed_at": nullableTime(e.CompletedAt),
			"updated_at":   e.UpdatedAt,
			"version":      goqu.L("version + 1"),
		}).
		Where(goqu.C("id").Eq(e.ID), goqu.C("version").Eq(e.Version)).
		Returning(exchangeColumns...).
		ToSQL()
	if err != nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", err)
	}

	var row exchangeRow
	err = store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", store.missOrStale(ctx, tableExchanges, e.ID, book.ErrResponseExchangeNotFound))
	}
	if err != nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", translate(err))
	}
	return row.toExchange(), nil
}

/* Lists the exchanges matching the filter, most recently requested first. */
func (store *Store) ListExchanges(ctx context.Context, filter book.ExchangeFilter) ([]book.Exchange, error) {
	where := []exp.Expression{}
	if filter.RequesterID != uuid.Nil {
		where = append(where, goqu.C("requester_id").Eq(filter.RequesterID))
	}
	if filter.ProviderID != uuid.Nil {
		where = append(where, goqu.C("provider_id").Eq(filter.ProviderID))
	}
	if filter.ParticipantID != uuid.Nil {
		where = append(where, goqu.Or(
			goqu.C("requester_id").Eq(filter.ParticipantID),
			goqu.C("provider_id").Eq(filter.ParticipantID),
		))
	}
	if filter.BookID != uuid.Nil {
		where = append(where, goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(string(filter.Status)))
	}

	query, args, err := dialect.From(tableExchanges).Prepared(true).
		Select(exchangeColumns...).
		Where(where...).
		Order(goqu.C("requested_at").Desc(), goqu.L(`id::text COLLATE "C"`).Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("listing exchanges from db: %w", err)
	}

	var rows []exchangeRow
	if err := sqlx.SelectContext(ctx, store.exc, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing exchanges from db: %w", translate(err))
	}

	exchanges := make([]book.Exchange, 0, len(rows))
	for _, r := range rows {
		exchanges = append(exchanges, r.toExchange())
	}
	return exchanges, nil
}
