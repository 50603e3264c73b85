// Package inspections exposes move-out and maintenance inspections.
package inspections

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/inspection"
	"onecore/internal/platform/upstream"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

type Source interface {
	ListInspections(ctx context.Context, page, limit int) ([]inspection.Inspection, int, error)
	GetInspection(ctx context.Context, id string) (inspection.Detail, error)
	ListInspectionsByResidence(ctx context.Context, residenceID string) ([]inspection.Inspection, error)
}

type Handler struct {
	source Source
	logger *slog.Logger
}

func NewHandler(source Source, logger *slog.Logger) *Handler {
	return &Handler{source: source, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/inspections", h.handleList)
	r.Get("/inspections/residence/{residenceId}", h.handleListByResidence)
	r.Get("/inspections/{inspectionId}", h.handleGet)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = upstream.ToDomain(err)
	h.logger.WarnContext(r.Context(), "inspection request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, total, err := h.source.ListInspections(r.Context(), page.Page, page.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []inspection.Inspection{}
	}
	httputil.WritePage(w, r, page, total, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.source.GetInspection(r.Context(), chi.URLParam(r, "inspectionId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, detail)
}

func (h *Handler) handleListByResidence(w http.ResponseWriter, r *http.Request) {
	items, err := h.source.ListInspectionsByResidence(r.Context(), chi.URLParam(r, "residenceId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []inspection.Inspection{}
	}
	httputil.WriteContent(w, http.StatusOK, items)
}
