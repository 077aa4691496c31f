// Package support records donations and plan subscriptions. Nothing is
// charged: payments are simulated and only their outcome is stored.
package support

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree     Plan = "Free"
	PlanStandard Plan = "Standard"
	PlanPremium  Plan = "Premium"
)

type PlanInfo struct {
	Name        Plan
	PriceCents  int64
	Description string
	Features    []string
}

var catalogue = []PlanInfo{
	{
		Name:        PlanFree,
		PriceCents:  0,
		Description: "Basic access to book exchanges",
		Features:    []string{"Browse all books", "List up to 5 books", "Request up to 3 exchanges per month"},
	},
	{
		Name:        PlanStandard,
		PriceCents:  499,
		Description: "For regular readers",
		Features:    []string{"Browse all books", "List up to 20 books", "Unlimited exchange requests", "Advanced search filters"},
	},
	{
		Name:        PlanPremium,
		PriceCents:  999,
		Description: "For book enthusiasts",
		Features:    []string{"Browse all books", "Unlimited book listings", "Unlimited exchange requests", "Advanced search filters", "Priority exchange requests", "Early access to new books"},
	},
}

func Plans() []PlanInfo {
	plans := make([]PlanInfo, len(catalogue))
	copy(plans, catalogue)
	return plans
}

func (p Plan) Valid() bool {
	for _, info := range catalogue {
		if info.Name == p {
			return true
		}
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "Active"
	SubscriptionCanceled SubscriptionStatus = "Canceled"
	SubscriptionExpired  SubscriptionStatus = "Expired"
)

const SubscriptionPeriod = 30 * 24 * time.Hour

type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Plan      Plan
	Status    SubscriptionStatus
	StartDate time.Time
	EndDate   time.Time
	AutoRenew bool
}

type Donation struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AmountCents   int64
	Message       string
	CreatedAt     time.Time
	TransactionID string
}

type DonationRequest struct {
	AmountCents int64
	Message     string
}

var amountFormat = regexp.MustCompile(`^\d+(\.\d{0,2})?$`)

/* Parses a decimal amount with at most two fractional digits into cents. */
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !amountFormat.MatchString(s) {
		return 0, ErrResponseDonationAmountInvalid
	}
	whole, frac, _ := strings.Cut(s, ".")
	frac = (frac + "00")[:2]
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrResponseDonationAmountInvalid
	}
	if units > (math.MaxInt64-99)/100 {
		return 0, ErrResponseDonationAmountInvalid
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	total := units*100 + cents
	if total <= 0 {
		return 0, ErrResponseDonationAmountInvalid
	}
	return total, nil
}

func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

type ServiceAPI interface {
	Donate(ctx context.Context, req DonationRequest, user *identity.User) (Donation, error)
	ListDonations(ctx context.Context, user *identity.User) ([]Donation, error)
	Subscribe(ctx context.Context, plan Plan, user *identity.User) (Subscription, error)
	CancelSubscription(ctx context.Context, user *identity.User) (Subscription, error)
	GetSubscription(ctx context.Context, user *identity.User) (Subscription, error)
}

type Repository interface {
	// BeginSupportTx returns a repository bound to a new transaction, or joins the current one.
	BeginSupportTx(ctx context.Context, opts *sql.TxOptions) (Repository, driver.Tx, error)
	CreateDonation(ctx context.Context, d Donation) (Donation, error)
	// ListDonations returns the user's donations, most recent first.
	ListDonations(ctx context.Context, userID uuid.UUID) ([]Donation, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (Subscription, error)
	UpsertSubscription(ctx context.Context, s Subscription) (Subscription, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used to date donations and subscription periods.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		now: func() time.Time {
			return time.Now().UTC().Round(time.Millisecond)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) inTx(ctx context.Context, fn func(repo Repository) error) error {
	txRepo, tx, err := s.repo.BeginSupportTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txRepo); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Service) Donate(ctx context.Context, req DonationRequest, user *identity.User) (Donation, error) {
	if user == nil {
		return Donation{}, pkgerrors.ErrResponseUnauthenticated
	}
	if req.AmountCents <= 0 {
		return Donation{}, ErrResponseDonationAmountInvalid
	}

	d, err := s.repo.CreateDonation(ctx, Donation{
		ID:            uuid.New(),
		UserID:        user.ID,
		AmountCents:   req.AmountCents,
		Message:       strings.TrimSpace(req.Message),
		CreatedAt:     s.now(),
		TransactionID: "TXN-" + strings.ToUpper(uuid.NewString()[:13]),
	})
	if err != nil {
		return Donation{}, fmt.Errorf("donating: %w", err)
	}
	s.logger.InfoContext(ctx, "donation recorded", "donation_id", d.ID, "user_id", d.UserID, "amount", FormatAmount(d.AmountCents))
	return d, nil
}

func (s *Service) ListDonations(ctx context.Context, user *identity.User) ([]Donation, error) {
	if user == nil {
		return nil, pkgerrors.ErrResponseUnauthenticated
	}
	donations, err := s.repo.ListDonations(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	return donations, nil
}

/* Returns the user's effective subscription. Users that never subscribed are on the Free plan. */
func (s *Service) GetSubscription(ctx context.Context, user *identity.User) (Subscription, error) {
	if user == nil {
		return Subscription{}, pkgerrors.ErrResponseUnauthenticated
	}
	return s.current(ctx, s.repo, user.ID)
}

func (s *Service) current(ctx context.Context, repo Repository, userID uuid.UUID) (Subscription, error) {
	sub, err := repo.GetSubscription(ctx, userID)
	if errors.Is(err, ErrResponseSubscriptionNotFound) {
		return Subscription{UserID: userID, Plan: PlanFree, Status: SubscriptionActive}, nil
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	if sub.Status != SubscriptionExpired && s.now().After(sub.EndDate) {
		sub.Status = SubscriptionExpired
	}
	return sub, nil
}

/* Starts a new period on a paid plan. Choosing Free changes nothing. */
func (s *Service) Subscribe(ctx context.Context, plan Plan, user *identity.User) (Subscription, error) {
	if user == nil {
		return Subscription{}, pkgerrors.ErrResponseUnauthenticated
	}
	if !plan.Valid() {
		return Subscription{}, ErrResponsePlanInvalid
	}

	var sub Subscription
	err := s.inTx(ctx, func(repo Repository) error {
		current, err := s.current(ctx, repo, user.ID)
		if err != nil {
			return err
		}
		if plan == PlanFree {
			sub = current
			return nil
		}
		if current.Plan == plan && current.Status == SubscriptionActive {
			return ErrResponseAlreadySubscribed
		}

		id := current.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		start := s.now()
		sub, err = repo.UpsertSubscription(ctx, Subscription{
			ID:        id,
			UserID:    user.ID,
			Plan:      plan,
			Status:    SubscriptionActive,
			StartDate: start,
			EndDate:   start.Add(SubscriptionPeriod),
			AutoRenew: true,
		})
		return err
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("subscribing: %w", err)
	}
	if plan != PlanFree {
		s.logger.InfoContext(ctx, "subscription started", "user_id", user.ID, "plan", plan)
	}
	return sub, nil
}

/* Stops renewal of the active paid plan. The plan stays usable until its end date. */
func (s *Service) CancelSubscription(ctx context.Context, user *identity.User) (Subscription, error) {
	if user == nil {
		return Subscription{}, pkgerrors.ErrResponseUnauthenticated
	}

	var sub Subscription
	err := s.inTx(ctx, func(repo Repository) error {
		current, err := s.current(ctx, repo, user.ID)
		if err != nil {
			return err
		}
		if current.Plan == PlanFree || current.Status != SubscriptionActive {
			return ErrResponseNoActiveSubscription
		}

		current.Status = SubscriptionCanceled
		current.AutoRenew = false
		sub, err = repo.UpsertSubscription(ctx, current)
		return err
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("canceling subscription: %w", err)
	}
	s.logger.InfoContext(ctx, "subscription canceled", "user_id", user.ID, "plan", sub.Plan)
	return sub, nil
}
