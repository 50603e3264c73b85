// Package invoices exposes invoices and their payment events from economy.
package invoices

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/economy"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
	"onecore/pkg/validation"
)

type Economy interface {
	ListInvoicesByContactCode(ctx context.Context, contactCode string) ([]economy.Invoice, error)
	ListPaymentEvents(ctx context.Context, invoiceID string) ([]economy.PaymentEvent, error)
}

type Handler struct {
	economy Economy
	logger  *slog.Logger
}

func NewHandler(e Economy, logger *slog.Logger) *Handler {
	return &Handler{economy: e, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/invoices/by-contact-code/{contactCode}", h.handleByContactCode)
	r.Get("/invoices/{invoiceId}/payment-events", h.handlePaymentEvents)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = upstream.ToDomain(err)
	h.logger.WarnContext(r.Context(), "economy request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleByContactCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "contactCode")
	if !validation.IsContactCode(code) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contact code"))
		return
	}
	out, err := h.economy.ListInvoicesByContactCode(r.Context(), code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []economy.Invoice{}
	}
	httputil.WriteContent(w, http.StatusOK, out)
}

func (h *Handler) handlePaymentEvents(w http.ResponseWriter, r *http.Request) {
	out, err := h.economy.ListPaymentEvents(r.Context(), chi.URLParam(r, "invoiceId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []economy.PaymentEvent{}
	}
	httputil.WriteContent(w, http.StatusOK, out)
}
