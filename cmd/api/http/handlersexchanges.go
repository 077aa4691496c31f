package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
)

const (
	actionAccept   = "accept"
	actionDecline  = "decline"
	actionComplete = "complete"

	roleRequester = "requester"
	roleProvider  = "provider"
)

/* Addresses a call to "/exchanges" according to the requested action.  */
func (h *BookHandler) exchanges(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.listExchanges(w, r)
		return
	case http.MethodPost:
		h.createExchange(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

/* Addresses "/exchanges/{id}" and "/exchanges/{id}/{action}". */
func (h *BookHandler) exchangeById(w http.ResponseWriter, r *http.Request) {
	rest, _ := strings.CutPrefix(r.URL.Path, "/exchanges/")
	idStr, action, hasAction := strings.Cut(rest, "/")

	switch {
	case !hasAction && r.Method == http.MethodGet:
		h.getExchange(w, r, idStr)
	case hasAction && r.Method == http.MethodPost:
		switch action {
		case actionAccept, actionDecline, actionComplete:
			h.moveExchange(w, r, idStr, action)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type ExchangeEntry struct {
	BookID uuid.UUID `json:"book_id"`
}

/* Validates the entry, then asks the book's owner for an exchange. */
func (h *BookHandler) createExchange(w http.ResponseWriter, r *http.Request) {
	var entry ExchangeEntry
	if !h.decodeEntry(w, r, &entry) {
		return
	}
	if entry.BookID == uuid.Nil {
		handleError(h.logger, w, r, book.ErrResponseExchangeEntryBlankFields)
		return
	}

	e, err := h.bookService.RequestExchange(r.Context(), entry.BookID, identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusCreated, exchangeToResponse(e))
}

/* Returns the exchange when the caller takes part in it. */
func (h *BookHandler) getExchange(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		handleError(h.logger, w, r, pkgerrors.ErrResponseIdInvalidFormat)
		return
	}
	e, err := h.participatedExchange(r, id)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, exchangeToResponse(e))
}

/* Applies accept, decline or complete. Only the provider answers; either party completes. */
func (h *BookHandler) moveExchange(w http.ResponseWriter, r *http.Request, idStr, action string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		handleError(h.logger, w, r, pkgerrors.ErrResponseIdInvalidFormat)
		return
	}
	e, err := h.participatedExchange(r, id)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	user := identity.FromContext(r.Context())
	var moved book.Exchange
	switch action {
	case actionComplete:
		moved, err = h.bookService.CompleteExchange(r.Context(), id)
	default:
		if e.ProviderID != user.ID {
			handleError(h.logger, w, r, pkgerrors.ErrResponseForbidden)
			return
		}
		moved, err = h.bookService.RespondToExchange(r.Context(), id, action == actionAccept)
	}
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, exchangeToResponse(moved))
}

func (h *BookHandler) participatedExchange(r *http.Request, id uuid.UUID) (book.Exchange, error) {
	user := identity.FromContext(r.Context())
	if user == nil {
		return book.Exchange{}, pkgerrors.ErrResponseUnauthenticated
	}
	e, err := h.bookService.GetExchange(r.Context(), id)
	if err != nil {
		return book.Exchange{}, err
	}
	if !e.Involves(user.ID) {
		return book.Exchange{}, pkgerrors.ErrResponseForbidden
	}
	return e, nil
}

/* Lists the caller's exchanges, optionally narrowed by role and status. */
func (h *BookHandler) listExchanges(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	if user == nil {
		handleError(h.logger, w, r, pkgerrors.ErrResponseUnauthenticated)
		return
	}

	query := r.URL.Query()
	var filter book.ExchangeFilter
	switch query.Get("role") {
	case "":
		filter.ParticipantID = user.ID
	case roleRequester:
		filter.RequesterID = user.ID
	case roleProvider:
		filter.ProviderID = user.ID
	default:
		handleError(h.logger, w, r, book.ErrResponseQueryRoleInvalid)
		return
	}
	if s := book.ExchangeStatus(query.Get("status")); s != "" {
		if !s.Valid() {
			handleError(h.logger, w, r, book.ErrResponseQueryStatusInvalid)
			return
		}
		filter.Status = s
	}

	exchanges, err := h.bookService.ListExchanges(r.Context(), filter)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	results := []ExchangeResponse{}
	for _, e := range exchanges {
		results = append(results, exchangeToResponse(e))
	}
	responseJSON(h.logger, w, http.StatusOK, results)
}

type ExchangeResponse struct {
	ID            uuid.UUID  `json:"id"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	RequesterName string     `json:"requester_name"`
	ProviderID    uuid.UUID  `json:"provider_id"`
	ProviderName  string     `json:"provider_name"`
	BookID        uuid.UUID  `json:"book_id"`
	BookTitle     string     `json:"book_title"`
	Status        string     `json:"status"`
	RequestedAt   time.Time  `json:"requested_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Version       int        `json:"version"`
}

/*Copy the fields of an exchange object to an http layer struct with json tags*/
func exchangeToResponse(e book.Exchange) ExchangeResponse {
	return ExchangeResponse{
		ID:            e.ID,
		RequesterID:   e.RequesterID,
		RequesterName: e.RequesterName,
		ProviderID:    e.ProviderID,
		ProviderName:  e.ProviderName,
		BookID:        e.BookID,
		BookTitle:     e.BookTitle,
		Status:        string(e.Status),
		RequestedAt:   e.RequestedAt,
		CompletedAt:   e.CompletedAt,
		Version:       e.Version,
	}
}
