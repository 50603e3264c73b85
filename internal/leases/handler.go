// Package leases exposes leases, contacts and rental blocks from the
// leasing service.
package leases

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/leasing"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/platform/limits"
	"onecore/pkg/requestcontext"
)

type Leasing interface {
	GetLease(ctx context.Context, leaseID string, includeContacts bool) (leasing.Lease, error)
	ListLeasesByRentalPropertyID(ctx context.Context, rentalPropertyID string, f leasing.LeaseFilter) ([]leasing.Lease, error)
	ListLeasesByContactCode(ctx context.Context, contactCode string, f leasing.LeaseFilter) ([]leasing.Lease, error)
	GetContact(ctx context.Context, contactCode string) (leasing.Contact, error)
	SearchContacts(ctx context.Context, q string) ([]leasing.ContactSummary, error)
	ListRentalBlocks(ctx context.Context, rentalPropertyID string) ([]leasing.RentalBlock, error)
}

type Handler struct {
	leasing Leasing
	logger  *slog.Logger
}

func NewHandler(l Leasing, logger *slog.Logger) *Handler {
	return &Handler{leasing: l, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/leases/{leaseId}", h.handleGetLease)
	r.Get("/leases/by-rental-property-id/{rentalPropertyId}", h.handleLeasesByRentalProperty)
	r.Get("/leases/by-contact-code/{contactCode}", h.handleLeasesByContactCode)
	r.Get("/contacts/search", h.handleSearchContacts)
	r.Get("/contacts/{contactCode}", h.handleGetContact)
	r.Get("/rental-blocks/by-rental-id/{rentalId}", h.handleRentalBlocks)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	err = upstream.ToDomain(err)
	h.logger.WarnContext(r.Context(), "leasing request failed",
		"op", op,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleGetLease(w http.ResponseWriter, r *http.Request) {
	includeContacts, err := boolParam(r, "includeContacts")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	lease, err := h.leasing.GetLease(r.Context(), chi.URLParam(r, "leaseId"), includeContacts)
	if err != nil {
		h.fail(w, r, "get_lease", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, lease)
}

func (h *Handler) handleLeasesByRentalProperty(w http.ResponseWriter, r *http.Request) {
	f, err := leaseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.leasing.ListLeasesByRentalPropertyID(r.Context(), chi.URLParam(r, "rentalPropertyId"), f)
	if err != nil {
		h.fail(w, r, "list_leases_by_rental_property", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, orEmpty(out))
}

func (h *Handler) handleLeasesByContactCode(w http.ResponseWriter, r *http.Request) {
	f, err := leaseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.leasing.ListLeasesByContactCode(r.Context(), chi.URLParam(r, "contactCode"), f)
	if err != nil {
		h.fail(w, r, "list_leases_by_contact_code", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, orEmpty(out))
}

func (h *Handler) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if err := limits.CheckSearchTerm("q", q); err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.leasing.SearchContacts(r.Context(), q)
	if err != nil {
		h.fail(w, r, "search_contacts", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, orEmpty(out))
}

func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.leasing.GetContact(r.Context(), chi.URLParam(r, "contactCode"))
	if err != nil {
		h.fail(w, r, "get_contact", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, contact)
}

func (h *Handler) handleRentalBlocks(w http.ResponseWriter, r *http.Request) {
	out, err := h.leasing.ListRentalBlocks(r.Context(), chi.URLParam(r, "rentalId"))
	if err != nil {
		h.fail(w, r, "list_rental_blocks", err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, orEmpty(out))
}

func leaseFilter(r *http.Request) (leasing.LeaseFilter, error) {
	var (
		f   leasing.LeaseFilter
		err error
	)
	if f.IncludeUpcomingLeases, err = boolParam(r, "includeUpcomingLeases"); err != nil {
		return f, err
	}
	if f.IncludeTerminatedLeases, err = boolParam(r, "includeTerminatedLeases"); err != nil {
		return f, err
	}
	if f.IncludeContacts, err = boolParam(r, "includeContacts"); err != nil {
		return f, err
	}
	return f, nil
}

// boolParam parses an optional boolean query flag; absent means false.
func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeBadRequest, name+" must be true or false")
	}
	return v, nil
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
