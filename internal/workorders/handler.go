// Package workorders exposes maintenance requests. Creation is audited.
package workorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/workorder"
	"onecore/internal/audit"
	"onecore/internal/platform/upstream"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

type Source interface {
	ListByContactCode(ctx context.Context, contactCode string) ([]workorder.WorkOrder, error)
	ListByRentalPropertyID(ctx context.Context, rentalPropertyID string) ([]workorder.WorkOrder, error)
	Create(ctx context.Context, in workorder.CreateInput) (workorder.WorkOrder, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action audit.Action, resource, resourceID string, outcome audit.Outcome, details map[string]string)
}

type Handler struct {
	source Source
	audit  AuditRecorder
	logger *slog.Logger
}

func NewHandler(source Source, recorder AuditRecorder, logger *slog.Logger) *Handler {
	return &Handler{source: source, audit: recorder, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/work-orders/by-contact-code/{contactCode}", h.handleByContactCode)
	r.Get("/work-orders/by-rental-property-id/{rentalPropertyId}", h.handleByRentalProperty)
}

func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/work-orders", h.handleCreate)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = upstream.ToDomain(err)
	h.logger.WarnContext(r.Context(), "work order request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleByContactCode(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.ListByContactCode(r.Context(), chi.URLParam(r, "contactCode"))
	h.writeList(w, r, out, err)
}

func (h *Handler) handleByRentalProperty(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.ListByRentalPropertyID(r.Context(), chi.URLParam(r, "rentalPropertyId"))
	h.writeList(w, r, out, err)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, out []workorder.WorkOrder, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []workorder.WorkOrder{}
	}
	httputil.WriteContent(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[workorder.CreateInput](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.source.Create(ctx, *in)
	if err != nil {
		h.audit.Record(ctx, audit.ActionWorkOrderCreated, audit.ResourceWorkOrder, "", audit.OutcomeFailure,
			map[string]string{"rentalPropertyId": in.RentalPropertyID, "error_kind": string(upstream.KindOf(err))})
		h.fail(w, r, err)
		return
	}
	h.audit.Record(ctx, audit.ActionWorkOrderCreated, audit.ResourceWorkOrder, created.ID, audit.OutcomeSuccess,
		map[string]string{"rentalPropertyId": in.RentalPropertyID, "contactCode": in.ContactCode})
	httputil.WriteContent(w, http.StatusCreated, created)
}
