package keyportal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/keys"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

type Portal interface {
	ListKeySystems(ctx context.Context, q string, page, limit int) (Page[keys.KeySystem], error)
	GetKeySystem(ctx context.Context, id string) (keys.KeySystem, error)
	CreateKeySystem(ctx context.Context, in keys.KeySystemInput) (keys.KeySystem, error)
	UpdateKeySystem(ctx context.Context, id string, in keys.KeySystemPatch) (keys.KeySystem, error)
	DeleteKeySystem(ctx context.Context, id string) error
	ListKeys(ctx context.Context, f keys.KeyFilter, page, limit int) (Page[keys.Key], error)
	GetKey(ctx context.Context, id string) (keys.Key, error)
	CreateKey(ctx context.Context, in keys.KeyInput) (keys.Key, error)
	UpdateKey(ctx context.Context, id string, in keys.KeyPatch) (keys.Key, error)
	DeleteKey(ctx context.Context, id string) error
	ListKeyLoans(ctx context.Context, f keys.KeyLoanFilter) ([]keys.KeyLoan, error)
	CreateKeyLoan(ctx context.Context, in keys.KeyLoanInput) (keys.KeyLoan, error)
	ReturnKeyLoan(ctx context.Context, id string) (keys.KeyLoan, error)
}

type Handler struct {
	portal Portal
	logger *slog.Logger
}

func NewHandler(portal Portal, logger *slog.Logger) *Handler {
	return &Handler{portal: portal, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/key-systems", h.handleListKeySystems)
	r.Get("/key-systems/{keySystemId}", h.handleGetKeySystem)
	r.Get("/keys", h.handleListKeys)
	r.Get("/keys/{keyId}", h.handleGetKey)
	r.Get("/key-loans", h.handleListKeyLoans)
}

// RegisterWrites mounts the mutations. Returning a loan has no body but
// lives with the other writes.
func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/key-systems", h.handleCreateKeySystem)
	r.Patch("/key-systems/{keySystemId}", h.handleUpdateKeySystem)
	r.Delete("/key-systems/{keySystemId}", h.handleDeleteKeySystem)
	r.Post("/keys", h.handleCreateKey)
	r.Patch("/keys/{keyId}", h.handleUpdateKey)
	r.Delete("/keys/{keyId}", h.handleDeleteKey)
	r.Post("/key-loans", h.handleCreateKeyLoan)
	r.Post("/key-loans/{loanId}/return", h.handleReturnKeyLoan)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		h.logger.WarnContext(r.Context(), "key portal request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	httputil.WriteContent(w, status, v)
}

func (h *Handler) handleListKeySystems(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.portal.ListKeySystems(r.Context(), r.URL.Query().Get("q"), page.Page, page.Limit)
	if err != nil {
		h.write(w, r, 0, nil, err)
		return
	}
	httputil.WritePage(w, r, page, out.Total, out.Items)
}

func (h *Handler) handleGetKeySystem(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.GetKeySystem(r.Context(), chi.URLParam(r, "keySystemId"))
	h.write(w, r, http.StatusOK, out, err)
}

func (h *Handler) handleCreateKeySystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[keys.KeySystemInput](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.portal.CreateKeySystem(ctx, *in)
	h.write(w, r, http.StatusCreated, out, err)
}

func (h *Handler) handleUpdateKeySystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[keys.KeySystemPatch](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.portal.UpdateKeySystem(ctx, chi.URLParam(r, "keySystemId"), *in)
	h.write(w, r, http.StatusOK, out, err)
}

func (h *Handler) handleDeleteKeySystem(w http.ResponseWriter, r *http.Request) {
	err := h.portal.DeleteKeySystem(r.Context(), chi.URLParam(r, "keySystemId"))
	h.write(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) handleListKeys(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	f := keys.KeyFilter{RentalObjectCode: q.Get("rentalObjectCode"), KeySystemID: q.Get("keySystemId")}
	out, err := h.portal.ListKeys(r.Context(), f, page.Page, page.Limit)
	if err != nil {
		h.write(w, r, 0, nil, err)
		return
	}
	httputil.WritePage(w, r, page, out.Total, out.Items)
}

func (h *Handler) handleGetKey(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.GetKey(r.Context(), chi.URLParam(r, "keyId"))
	h.write(w, r, http.StatusOK, out, err)
}

func (h *Handler) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[keys.KeyInput](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.portal.CreateKey(ctx, *in)
	h.write(w, r, http.StatusCreated, out, err)
}

func (h *Handler) handleUpdateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[keys.KeyPatch](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.portal.UpdateKey(ctx, chi.URLParam(r, "keyId"), *in)
	h.write(w, r, http.StatusOK, out, err)
}

func (h *Handler) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	err := h.portal.DeleteKey(r.Context(), chi.URLParam(r, "keyId"))
	h.write(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) handleListKeyLoans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.portal.ListKeyLoans(r.Context(), keys.KeyLoanFilter{KeyID: q.Get("keyId"), Contact: q.Get("contact")})
	h.write(w, r, http.StatusOK, out, err)
}

func (h *Handler) handleCreateKeyLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[keys.KeyLoanInput](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.portal.CreateKeyLoan(ctx, *in)
	h.write(w, r, http.StatusCreated, out, err)
}

func (h *Handler) handleReturnKeyLoan(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.ReturnKeyLoan(r.Context(), chi.URLParam(r, "loanId"))
	h.write(w, r, http.StatusOK, out, err)
}
