package tenants

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

type Aggregator interface {
	GetByContactCode(ctx context.Context, contactCode string) (Tenant, error)
}

type Handler struct {
	tenants Aggregator
	logger  *slog.Logger
}

func NewHandler(tenants Aggregator, logger *slog.Logger) *Handler {
	return &Handler{tenants: tenants, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/tenants/contact-code/{contactCode}", h.handleGetByContactCode)
}

func (h *Handler) handleGetByContactCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, err := h.tenants.GetByContactCode(ctx, chi.URLParam(r, "contactCode"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load tenant",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, tenant)
}
