package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/book-exchange/cmd/api/support"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	tableDonations     = "donations"
	tableSubscriptions = "subscriptions"
)

type donationRow struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	AmountCents   int64     `db:"amount_cents"`
	Message       string    `db:"message"`
	CreatedAt     time.Time `db:"created_at"`
	TransactionID string    `db:"transaction_id"`
}

func (r donationRow) toDonation() support.Donation {
	return support.Donation{
		ID:            r.ID,
		UserID:        r.UserID,
		AmountCents:   r.AmountCents,
		Message:       r.Message,
		CreatedAt:     r.CreatedAt.UTC(),
		TransactionID: r.TransactionID,
	}
}

type subscriptionRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Plan      string    `db:"plan"`
	Status    string    `db:"status"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	AutoRenew bool      `db:"auto_renew"`
}

func (r subscriptionRow) toSubscription() support.Subscription {
	return support.Subscription{
		ID:        r.ID,
		UserID:    r.UserID,
		Plan:      support.Plan(r.Plan),
		Status:    support.SubscriptionStatus(r.Status),
		StartDate: r.StartDate.UTC(),
		EndDate:   r.EndDate.UTC(),
		AutoRenew: r.AutoRenew,
	}
}

var (
	donationColumns     = []any{"id", "user_id", "amount_cents", "message", "created_at", "transaction_id"}
	subscriptionColumns = []any{"id", "user_id", "plan", "status", "start_date", "end_date", "auto_renew"}
)

func (store *Store) CreateDonation(ctx context.Context, d support.Donation) (support.Donation, error) {
	query, args, err := dialect.Insert(tableDonations).Prepared(true).
		Rows(goqu.Record{
			"id":             d.ID,
			"user_id":        d.UserID,
			"amount_cents":   d.AmountCents,
			"message":        d.Message,
			"created_at":     d.CreatedAt,
			"transaction_id": d.TransactionID,
		}).
		Returning(donationColumns...).
		ToSQL()
	if err != nil {
		return support.Donation{}, fmt.Errorf("storing donation on db: %w", err)
	}

	var row donationRow
	if err := store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return support.Donation{}, fmt.Errorf("storing donation on db: %w", translate(err))
	}
	return row.toDonation(), nil
}

func (store *Store) ListDonations(ctx context.Context, userID uuid.UUID) ([]support.Donation, error) {
	query, args, err := dialect.From(tableDonations).Prepared(true).
		Select(donationColumns...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("listing donations from db: %w", err)
	}

	var rows []donationRow
	if err := sqlx.SelectContext(ctx, store.exc, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing donations from db: %w", translate(err))
	}
	donations := make([]support.Donation, 0, len(rows))
	for _, r := range rows {
		donations = append(donations, r.toDonation())
	}
	return donations, nil
}

func (store *Store) GetSubscription(ctx context.Context, userID uuid.UUID) (support.Subscription, error) {
	query, args, err := dialect.From(tableSubscriptions).Prepared(true).
		Select(subscriptionColumns...).
		Where(goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", err)
	}

	var row subscriptionRow
	err = store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", support.ErrResponseSubscriptionNotFound)
	}
	if err != nil {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", translate(err))
	}
	return row.toSubscription(), nil
}

func (store *Store) UpsertSubscription(ctx context.Context, s support.Subscription) (support.Subscription, error) {
	record := goqu.Record{
		"id":         s.ID,
		"user_id":    s.UserID,
		"plan":       string(s.Plan),
		"status":     string(s.Status),
		"start_date": s.StartDate,
		"end_date":   s.EndDate,
		"auto_renew": s.AutoRenew,
	}
	query, args, err := dialect.Insert(tableSubscriptions).Prepared(true).
		Rows(record).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"id":         goqu.I("excluded.id"),
			"plan":       goqu.I("excluded.plan"),
			"status":     goqu.I("excluded.status"),
			"start_date": goqu.I("excluded.start_date"),
			"end_date":   goqu.I("excluded.end_date"),
			"auto_renew": goqu.I("excluded.auto_renew"),
		})).
		Returning(subscriptionColumns...).
		ToSQL()
	if err != nil {
		return support.Subscription{}, fmt.Errorf("upserting subscription on db: %w", err)
	}

	var row subscriptionRow
	if err := store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return support.Subscription{}, fmt.Errorf("upserting subscription on db: %w", translate(err))
	}
	return row.toSubscription(), nil
}
