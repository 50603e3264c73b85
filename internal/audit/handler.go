package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

type Lister interface {
	List(ctx context.Context, filter Filter) ([]Event, error)
}

type Handler struct {
	events Lister
	logger *slog.Logger
}

func NewHandler(events Lister, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := Filter{
		Resource:   q.Get("resource"),
		ResourceID: q.Get("resourceId"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and "+strconv.Itoa(MaxListLimit)))
			return
		}
		filter.Limit = n
	}
	if filter.ResourceID != "" && filter.Resource == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "resourceId requires resource"))
		return
	}

	events, err := h.events.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if events == nil {
		events = []Event{}
	}
	httputil.WriteContent(w, http.StatusOK, events)
}
