package book

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_book.go -package=mocks

type ServiceAPI interface {
	AddBook(ctx context.Context, req CreateBookRequest, user *identity.User) (Book, error)
	UpdateBook(ctx context.Context, req UpdateBookRequest) (Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (Book, error)
	ListBooks(ctx context.Context, req ListBooksRequest) (PagedBooks, error)
	UserBooks(ctx context.Context, ownerID uuid.UUID) ([]Book, error)
	RequestExchange(ctx context.Context, bookID uuid.UUID, user *identity.User) (Exchange, error)
	RespondToExchange(ctx context.Context, exchangeID uuid.UUID, accept bool) (Exchange, error)
	CompleteExchange(ctx context.Context, exchangeID uuid.UUID) (Exchange, error)
	GetExchange(ctx context.Context, id uuid.UUID) (Exchange, error)
	ListExchanges(ctx context.Context, filter ExchangeFilter) ([]Exchange, error)
	Busy() bool
}

// Repository is the persistence boundary of the service. Update methods are
// compare-and-swap: the given Version must match the stored one, and the
// stored record is written back with Version+1.
type Repository interface {
	CreateBook(ctx context.Context, b Book) (Book, error)
	GetBookByID(ctx context.Context, id uuid.UUID) (Book, error)
	UpdateBook(ctx context.Context, b Book) (Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	// ListBooks returns every match when pageSize is not positive.
	ListBooks(ctx context.Context, filter BookFilter, sortBy, sortDirection string, page, pageSize int) ([]Book, error)
	ListBooksTotals(ctx context.Context, filter BookFilter) (int, error)
	CreateExchange(ctx context.Context, e Exchange) (Exchange, error)
	GetExchangeByID(ctx context.Context, id uuid.UUID) (Exchange, error)
	UpdateExchange(ctx context.Context, e Exchange) (Exchange, error)
	ListExchanges(ctx context.Context, filter ExchangeFilter) ([]Exchange, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Repository, driver.Tx, error)
}

type Notifier interface {
	ExchangeRequested(ctx context.Context, e Exchange) error
	ExchangeResponded(ctx context.Context, e Exchange) error
	ExchangeCompleted(ctx context.Context, e Exchange) error
}

type Service struct {
	repo                 Repository
	ntfy                 Notifier
	notificationsTimeout time.Duration
	logger               *slog.Logger
	inFlight             *atomic.Int32
	notifying            sync.WaitGroup
}

func NewService(repo Repository, ntfy Notifier, notificationsTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:                 repo,
		ntfy:                 ntfy,
		notificationsTimeout: notificationsTimeout,
		logger:               logger,
		inFlight:             atomic.NewInt32(0),
	}
}

/* Reports whether any mutating operation is still running. */
func (s *Service) Busy() bool {
	return s.inFlight.Load() > 0
}

// Wait blocks until every notification already dispatched has finished.
func (s *Service) Wait() {
	s.notifying.Wait()
}

func (s *Service) track() func() {
	s.inFlight.Inc()
	return func() { s.inFlight.Dec() }
}

func now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

/* Runs fn inside a repository transaction, committing only when fn succeeds. */
func (s *Service) inTx(ctx context.Context, fn func(repo Repository) error) error {
	txRepo, tx, err := s.repo.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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

func (s *Service) AddBook(ctx context.Context, req CreateBookRequest, user *identity.User) (Book, error) {
	defer s.track()()

	if user == nil {
		return Book{}, pkgerrors.ErrResponseUnauthenticated
	}
	if err := FilledFields(req); err != nil {
		return Book{}, err
	}
	if req.Condition == "" {
		req.Condition = ConditionGood
	}

	createdAt := now()
	newBook := Book{
		ID:                   uuid.New(),
		Title:                req.Title,
		Author:               req.Author,
		CoverImage:           req.CoverImage,
		Description:          req.Description,
		Genres:               slices.Clone(req.Genres),
		Condition:            req.Condition,
		OwnerID:              user.ID,
		OwnerName:            user.Name,
		Status:               StatusAvailable,
		AvailableForExchange: req.AvailableForExchange,
		AddedAt:              createdAt,
		UpdatedAt:            createdAt,
		Version:              1,
	}

	var created Book
	err := s.inTx(ctx, func(repo Repository) (err error) {
		created, err = repo.CreateBook(ctx, newBook)
		return err
	})
	if err != nil {
		return Book{}, fmt.Errorf("adding book: %w", err)
	}
	s.logger.InfoContext(ctx, "book added", "book_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

func (s *Service) UpdateBook(ctx context.Context, req UpdateBookRequest) (Book, error) {
	defer s.track()()

	if err := req.validate(); err != nil {
		return Book{}, err
	}

	var updated Book
	err := s.inTx(ctx, func(repo Repository) error {
		current, err := repo.GetBookByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.ExpectedVersion != 0 && req.ExpectedVersion != current.Version {
			return pkgerrors.ErrResponseVersionConflict
		}
		merged := req.merge(current)
		merged.UpdatedAt = now()
		updated, err = repo.UpdateBook(ctx, merged)
		return err
	})
	if err != nil {
		return Book{}, fmt.Errorf("updating book: %w", err)
	}
	return updated, nil
}

/* Removes the book. Deleting a book that does not exist is not an error. */
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	defer s.track()()

	err := s.inTx(ctx, func(repo Repository) error {
		return repo.DeleteBook(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (Book, error) {
	return s.repo.GetBookByID(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, req ListBooksRequest) (PagedBooks, error) {
	if req.Page < 1 || req.PageSize < 1 || req.PageSize > PageSizeMax {
		return PagedBooks{}, pkgerrors.ErrResponseQueryPageInvalid
	}

	itemsTotal, err := s.repo.ListBooksTotals(ctx, req.BookFilter)
	if err != nil {
		return PagedBooks{}, fmt.Errorf("counting books: %w", err)
	}
	if itemsTotal == 0 {
		return PagedBooks{Results: []Book{}}, nil
	}

	pageTotal := (itemsTotal + req.PageSize - 1) / req.PageSize
	if req.Page > pageTotal {
		return PagedBooks{}, pkgerrors.ErrResponseQueryPageOutOfRange
	}

	books, err := s.repo.ListBooks(ctx, req.BookFilter, req.SortBy, req.SortDirection, req.Page, req.PageSize)
	if err != nil {
		return PagedBooks{}, fmt.Errorf("listing books: %w", err)
	}

	return PagedBooks{
		PageCurrent: req.Page,
		PageTotal:   pageTotal,
		PageSize:    req.PageSize,
		ItemsTotal:  itemsTotal,
		Results:     books,
	}, nil
}

/* Returns every book owned by the user, most recent first. */
func (s *Service) UserBooks(ctx context.Context, ownerID uuid.UUID) ([]Book, error) {
	books, err := s.repo.ListBooks(ctx, BookFilter{OwnerID: ownerID}, SortByAddedAt, SortDesc, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("listing user books: %w", err)
	}
	return books, nil
}

/* Bulk-loads books, skipping the ones already stored. Returns how many were inserted. */
func (s *Service) Seed(ctx context.Context, books []Book) (int, error) {
	defer s.track()()

	inserted := 0
	err := s.inTx(ctx, func(repo Repository) error {
		for _, b := range books {
			_, err := repo.GetBookByID(ctx, b.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrResponseBookNotFound) {
				return err
			}
			if _, err := repo.CreateBook(ctx, b); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding books: %w", err)
	}
	s.logger.InfoContext(ctx, "books seeded", "inserted", inserted, "skipped", len(books)-inserted)
	return inserted, nil
}
