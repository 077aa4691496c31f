package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
)

/* Opens an exchange for a book owned by someone else and puts the book on hold. */
func (s *Service) RequestExchange(ctx context.Context, bookID uuid.UUID, user *identity.User) (Exchange, error) {
	defer s.track()()

	if user == nil {
		return Exchange{}, pkgerrors.ErrResponseUnauthenticated
	}

	var created Exchange
	err := s.inTx(ctx, func(repo Repository) error {
		b, err := repo.GetBookByID(ctx, bookID)
		if err != nil {
			return err
		}
		if b.OwnerID == user.ID {
			return ErrResponseSelfExchange
		}
		if b.Status != StatusAvailable {
			return ErrResponseBookNotAvailable
		}

		requestedAt := now()
		b.Status = StatusPending
		b.UpdatedAt = requestedAt
		if _, err := repo.UpdateBook(ctx, b); err != nil {
			return err
		}

		created, err = repo.CreateExchange(ctx, Exchange{
			ID:            uuid.New(),
			RequesterID:   user.ID,
			RequesterName: user.Name,
			ProviderID:    b.OwnerID,
			ProviderName:  b.OwnerName,
			BookID:        b.ID,
			BookTitle:     b.Title,
			Status:        ExchangeRequested,
			RequestedAt:   requestedAt,
			UpdatedAt:     requestedAt,
			Version:       1,
		})
		return err
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("requesting exchange: %w", err)
	}

	s.logger.InfoContext(ctx, "exchange requested", "exchange_id", created.ID, "book_id", created.BookID, "requester_id", created.RequesterID)
	s.notify(created, s.ntfyRequested)
	return created, nil
}

/* Accepts or declines a requested exchange. A declined exchange releases its book. */
func (s *Service) RespondToExchange(ctx context.Context, exchangeID uuid.UUID, accept bool) (Exchange, error) {
	defer s.track()()

	next := ExchangeDeclined
	if accept {
		next = ExchangeAccepted
	}

	var updated Exchange
	err := s.inTx(ctx, func(repo Repository) error {
		e, err := s.transition(ctx, repo, exchangeID, next)
		if err != nil {
			return err
		}
		if !accept {
			if err := s.setBookStatus(ctx, repo, e.BookID, StatusAvailable); err != nil {
				return err
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("responding to exchange: %w", err)
	}

	s.logger.InfoContext(ctx, "exchange responded", "exchange_id", updated.ID, "status", updated.Status)
	s.notify(updated, s.ntfyResponded)
	return updated, nil
}

/* Closes an accepted exchange and marks its book as exchanged. */
func (s *Service) CompleteExchange(ctx context.Context, exchangeID uuid.UUID) (Exchange, error) {
	defer s.track()()

	var updated Exchange
	err := s.inTx(ctx, func(repo Repository) error {
		e, err := s.transition(ctx, repo, exchangeID, ExchangeCompleted)
		if err != nil {
			return err
		}
		if err := s.setBookStatus(ctx, repo, e.BookID, StatusExchanged); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("completing exchange: %w", err)
	}

	s.logger.InfoContext(ctx, "exchange completed", "exchange_id", updated.ID, "book_id", updated.BookID)
	s.notify(updated, s.ntfyCompleted)
	return updated, nil
}

func (s *Service) GetExchange(ctx context.Context, id uuid.UUID) (Exchange, error) {
	return s.repo.GetExchangeByID(ctx, id)
}

func (s *Service) ListExchanges(ctx context.Context, filter ExchangeFilter) ([]Exchange, error) {
	exchanges, err := s.repo.ListExchanges(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	return exchanges, nil
}

/* Moves the stored exchange to the next status, failing when the state machine forbids it. */
func (s *Service) transition(ctx context.Context, repo Repository, exchangeID uuid.UUID, next ExchangeStatus) (Exchange, error) {
	e, err := repo.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		return Exchange{}, err
	}
	if !CanTransition(e.Status, next) {
		return Exchange{}, fmt.Errorf("%s to %s: %w", e.Status, next, ErrResponseInvalidTransition)
	}

	changedAt := now()
	e.Status = next
	e.UpdatedAt = changedAt
	if next == ExchangeCompleted {
		if changedAt.Before(e.RequestedAt) {
			changedAt = e.RequestedAt
		}
		e.CompletedAt = &changedAt
	}
	return repo.UpdateExchange(ctx, e)
}

// setBookStatus skips books deleted by their owner while the exchange was open.
func (s *Service) setBookStatus(ctx context.Context, repo Repository, bookID uuid.UUID, status Status) error {
	b, err := repo.GetBookByID(ctx, bookID)
	if errors.Is(err, ErrResponseBookNotFound) {
		s.logger.WarnContext(ctx, "exchanged book no longer exists", "book_id", bookID)
		return nil
	}
	if err != nil {
		return err
	}
	b.Status = status
	b.UpdatedAt = now()
	_, err = repo.UpdateBook(ctx, b)
	return err
}

func (s *Service) ntfyRequested(ctx context.Context, e Exchange) error {
	return s.ntfy.ExchangeRequested(ctx, e)
}

func (s *Service) ntfyResponded(ctx context.Context, e Exchange) error {
	return s.ntfy.ExchangeResponded(ctx, e)
}

func (s *Service) ntfyCompleted(ctx context.Context, e Exchange) error {
	return s.ntfy.ExchangeCompleted(ctx, e)
}

/* Sends the notification in the background. Failures are only logged. */
func (s *Service) notify(e Exchange, send func(ctx context.Context, e Exchange) error) {
	if s.ntfy == nil {
		return
	}
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notificationsTimeout)
		defer cancel()
		if err := send(ctx, e); err != nil {
			s.logger.Warn("exchange notification failed", "exchange_id", e.ID, "status", e.Status, "error", err)
		}
	}()
}
