package inmemory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/book-exchange/cmd/api/support"
	"github.com/google/uuid"
)

type AdaptedDonation struct {
	ID            string
	UserID        string
	AmountCents   int64
	Message       string
	CreatedAt     time.Time
	TransactionID string
}

type AdaptedSubscription struct {
	ID        string
	UserID    string
	Plan      string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	AutoRenew bool
}

func adaptDonationToUUID(d AdaptedDonation) support.Donation {
	return support.Donation{
		ID:            uuid.MustParse(d.ID),
		UserID:        uuid.MustParse(d.UserID),
		AmountCents:   d.AmountCents,
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
		TransactionID: d.TransactionID,
	}
}

func adaptSubscriptionToUUID(s AdaptedSubscription) support.Subscription {
	return support.Subscription{
		ID:        uuid.MustParse(s.ID),
		UserID:    uuid.MustParse(s.UserID),
		Plan:      support.Plan(s.Plan),
		Status:    support.SubscriptionStatus(s.Status),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		AutoRenew: s.AutoRenew,
	}
}

// -- Donations --

func (store *InMemoryStore) CreateDonation(ctx context.Context, d support.Donation) (support.Donation, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return support.Donation{}, fmt.Errorf("storing donation on db: %w", err)
	}
	defer sc.end()

	adapted := AdaptedDonation{
		ID:            d.ID.String(),
		UserID:        d.UserID.String(),
		AmountCents:   d.AmountCents,
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
		TransactionID: d.TransactionID,
	}
	if err := sc.txn.Insert("donation", adapted); err != nil {
		return support.Donation{}, fmt.Errorf("storing donation on db: %w", err)
	}

	sc.commit()
	return adaptDonationToUUID(adapted), nil
}

func (store *InMemoryStore) ListDonations(ctx context.Context, userID uuid.UUID) ([]support.Donation, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing donations from db: %w", err)
	}
	defer sc.end()

	it, err := sc.txn.Get("donation", "user_id", userID.String())
	if err != nil {
		return nil, fmt.Errorf("listing donations from db: %w", err)
	}

	donations := []support.Donation{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		donations = append(donations, adaptDonationToUUID(obj.(AdaptedDonation)))
	}
	slices.SortFunc(donations, func(a, b support.Donation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return donations, nil
}

// -- Subscriptions --

func (store *InMemoryStore) GetSubscription(ctx context.Context, userID uuid.UUID) (support.Subscription, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("subscription", "id", userID.String())
	if err != nil {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", err)
	}
	if raw == nil {
		return support.Subscription{}, fmt.Errorf("getting subscription from db: %w", support.ErrResponseSubscriptionNotFound)
	}
	return adaptSubscriptionToUUID(raw.(AdaptedSubscription)), nil
}

func (store *InMemoryStore) UpsertSubscription(ctx context.Context, s support.Subscription) (support.Subscription, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return support.Subscription{}, fmt.Errorf("upserting subscription on db: %w", err)
	}
	defer sc.end()

	adapted := AdaptedSubscription{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		Plan:      string(s.Plan),
		Status:    string(s.Status),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		AutoRenew: s.AutoRenew,
	}
	if err := sc.txn.Insert("subscription", adapted); err != nil {
		return support.Subscription{}, fmt.Errorf("upserting subscription on db: %w", err)
	}

	sc.commit()
	return adaptSubscriptionToUUID(adapted), nil
}
