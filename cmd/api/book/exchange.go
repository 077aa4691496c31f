package book

import (
	"time"

	"github.com/google/uuid"
)

type ExchangeStatus string

const (
	ExchangeRequested ExchangeStatus = "Requested"
	ExchangeAccepted  ExchangeStatus = "Accepted"
	ExchangeCompleted ExchangeStatus = "Completed"
	ExchangeDeclined  ExchangeStatus = "Declined"
	// ExchangeCanceled is part of the vocabulary but nothing moves an
	// exchange into it yet.
	ExchangeCanceled ExchangeStatus = "Canceled"
)

var ExchangeStatuses = []ExchangeStatus{ExchangeRequested, ExchangeAccepted, ExchangeCompleted, ExchangeDeclined, ExchangeCanceled}

// Active exchanges hold their book in Pending Exchange.
func (s ExchangeStatus) Active() bool {
	return s == ExchangeRequested || s == ExchangeAccepted
}

func (s ExchangeStatus) Valid() bool {
	for _, v := range ExchangeStatuses {
		if v == s {
			return true
		}
	}
	return false
}

var transitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeRequested: {ExchangeAccepted, ExchangeDeclined},
	ExchangeAccepted:  {ExchangeCompleted},
}

/* Reports whether an exchange may move from one status to the other. */
func CanTransition(from, to ExchangeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Exchange struct {
	ID            uuid.UUID
	RequesterID   uuid.UUID
	RequesterName string
	ProviderID    uuid.UUID
	ProviderName  string
	BookID        uuid.UUID
	BookTitle     string
	Status        ExchangeStatus
	RequestedAt   time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
	Version       int
}

/* Reports whether the user is the requester or the provider of the exchange. */
func (e Exchange) Involves(userID uuid.UUID) bool {
	return e.RequesterID == userID || e.ProviderID == userID
}

// ExchangeFilter selects exchanges. Zero fields match everything;
// ParticipantID matches either side of the exchange.
type ExchangeFilter struct {
	RequesterID   uuid.UUID
	ProviderID    uuid.UUID
	ParticipantID uuid.UUID
	BookID        uuid.UUID
	Status        ExchangeStatus
}

func (f ExchangeFilter) Match(e Exchange) bool {
	if f.RequesterID != uuid.Nil && e.RequesterID != f.RequesterID {
		return false
	}
	if f.ProviderID != uuid.Nil && e.ProviderID != f.ProviderID {
		return false
	}
	if f.ParticipantID != uuid.Nil && !e.Involves(f.ParticipantID) {
		return false
	}
	if f.BookID != uuid.Nil && e.BookID != f.BookID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}
