package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/book-exchange/cmd/api/support"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

type SupportHandler struct {
	supportService support.ServiceAPI
	logger         *slog.Logger
}

func NewSupportHandler(supportService support.ServiceAPI, logger *slog.Logger) *SupportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SupportHandler{supportService: supportService, logger: logger}
}

/* Addresses a call to "/donations" according to the requested action.  */
func (h *SupportHandler) donations(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.listDonations(w, r)
		return
	case http.MethodPost:
		h.donate(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

/* Addresses a call to "/subscription" according to the requested action.  */
func (h *SupportHandler) subscription(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.getSubscription(w, r)
		return
	case http.MethodPut:
		h.subscribe(w, r)
		return
	case http.MethodDelete:
		h.cancelSubscription(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

// DonationEntry accepts the amount either as a JSON number or a string, e.g. 5 or "4.99".
type DonationEntry struct {
	Amount  jsoniter.RawMessage `json:"amount"`
	Message string              `json:"message"`
}

func (h *SupportHandler) donate(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	if user == nil {
		handleError(h.logger, w, r, pkgerrors.ErrResponseUnauthenticated)
		return
	}

	var entry DonationEntry
	if !decodeEntry(h.logger, w, r, &entry) {
		return
	}
	cents, err := support.ParseAmount(strings.Trim(string(entry.Amount), `"`))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	d, err := h.supportService.Donate(r.Context(), support.DonationRequest{AmountCents: cents, Message: entry.Message}, user)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusCreated, donationToResponse(d))
}

func (h *SupportHandler) listDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.supportService.ListDonations(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	results := []DonationResponse{}
	for _, d := range donations {
		results = append(results, donationToResponse(d))
	}
	responseJSON(h.logger, w, http.StatusOK, results)
}

/* Returns the plan catalogue. */
func (h *SupportHandler) plans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	results := []PlanResponse{}
	for _, p := range support.Plans() {
		results = append(results, PlanResponse{
			Name:        string(p.Name),
			Price:       support.FormatAmount(p.PriceCents),
			Description: p.Description,
			Features:    p.Features,
		})
	}
	responseJSON(h.logger, w, http.StatusOK, results)
}

func (h *SupportHandler) getSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.supportService.GetSubscription(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, subscriptionToResponse(sub))
}

type SubscriptionEntry struct {
	Plan string `json:"plan"`
}

func (h *SupportHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	var entry SubscriptionEntry
	if !decodeEntry(h.logger, w, r, &entry) {
		return
	}
	sub, err := h.supportService.Subscribe(r.Context(), support.Plan(entry.Plan), identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, subscriptionToResponse(sub))
}

func (h *SupportHandler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.supportService.CancelSubscription(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, subscriptionToResponse(sub))
}

type DonationResponse struct {
	ID            uuid.UUID `json:"id"`
	Amount        string    `json:"amount"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
	TransactionID string    `json:"transaction_id"`
}

func donationToResponse(d support.Donation) DonationResponse {
	return DonationResponse{
		ID:            d.ID,
		Amount:        support.FormatAmount(d.AmountCents),
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
		TransactionID: d.TransactionID,
	}
}

type PlanResponse struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type SubscriptionResponse struct {
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	AutoRenew bool       `json:"auto_renew"`
}

func subscriptionToResponse(s support.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		Plan:      string(s.Plan),
		Status:    string(s.Status),
		AutoRenew: s.AutoRenew,
	}
	if !s.StartDate.IsZero() {
		start, end := s.StartDate, s.EndDate
		resp.StartDate = &start
		resp.EndDate = &end
	}
	return resp
}
