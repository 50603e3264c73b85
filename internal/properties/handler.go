package properties

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/propertybase"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

// Reader is the read side of the property tree.
type Reader interface {
	ListCompanies(ctx context.Context) ([]propertybase.Company, error)
	ListProperties(ctx context.Context, companyCode string) ([]propertybase.Property, error)
	GetProperty(ctx context.Context, id string) (propertybase.Property, error)
	ListBuildings(ctx context.Context, propertyCode string) ([]propertybase.Building, error)
	GetBuilding(ctx context.Context, id string) (propertybase.Building, error)
	ListResidences(ctx context.Context, buildingCode, staircaseCode string) ([]propertybase.Residence, error)
	GetResidence(ctx context.Context, id string) (propertybase.Residence, error)
	GetResidenceByRentalID(ctx context.Context, rentalID string) (propertybase.Residence, error)
	ListRooms(ctx context.Context, residenceID string) ([]propertybase.Room, error)
	ListComponents(ctx context.Context, roomID string) ([]propertybase.Component, error)
	GetComponent(ctx context.Context, id string) (propertybase.Component, error)
	GetComponentModel(ctx context.Context, id string) (propertybase.ComponentModel, error)
}

// Writer mutates components.
type Writer interface {
	CreateComponent(ctx context.Context, in propertybase.ComponentInput) (propertybase.Component, error)
	UpdateComponent(ctx context.Context, id string, in propertybase.ComponentUpdate) (propertybase.Component, error)
	DeleteComponent(ctx context.Context, id string) error
}

type PropertyService interface {
	Reader
	Writer
}

type Handler struct {
	svc    PropertyService
	logger *slog.Logger
}

func NewHandler(svc PropertyService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/companies", h.handleListCompanies)
	r.Get("/properties", h.handleListProperties)
	r.Get("/properties/{propertyId}", h.handleGetProperty)
	r.Get("/buildings", h.handleListBuildings)
	r.Get("/buildings/{buildingId}", h.handleGetBuilding)
	r.Get("/residences", h.handleListResidences)
	r.Get("/residences/rental-id/{rentalId}", h.handleGetResidenceByRentalID)
	r.Get("/residences/{residenceId}", h.handleGetResidence)
	r.Get("/rooms", h.handleListRooms)
	r.Get("/components", h.handleListComponents)
	r.Get("/components/{componentId}", h.handleGetComponent)
	r.Get("/component-models/{modelId}", h.handleGetComponentModel)
}

// RegisterWrites mounts the component mutations; they carry JSON bodies.
func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/components", h.handleCreateComponent)
	r.Put("/components/{componentId}", h.handleUpdateComponent)
	r.Delete("/components/{componentId}", h.handleDeleteComponent)
}

// reply writes content or the error; every read route follows this shape.
func reply[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string, v T, err error) {
	if err != nil {
		h.logger.WarnContext(r.Context(), "property request failed",
			"op", op,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, v)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCompanies(r.Context())
	reply(h, w, r, "list_companies", out, err)
}

func (h *Handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListProperties(r.Context(), r.URL.Query().Get("companyCode"))
	reply(h, w, r, "list_properties", out, err)
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetProperty(r.Context(), chi.URLParam(r, "propertyId"))
	reply(h, w, r, "get_property", out, err)
}

func (h *Handler) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListBuildings(r.Context(), r.URL.Query().Get("propertyCode"))
	reply(h, w, r, "list_buildings", out, err)
}

func (h *Handler) handleGetBuilding(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetBuilding(r.Context(), chi.URLParam(r, "buildingId"))
	reply(h, w, r, "get_building", out, err)
}

func (h *Handler) handleListResidences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.ListResidences(r.Context(), q.Get("buildingCode"), q.Get("staircaseCode"))
	reply(h, w, r, "list_residences", out, err)
}

func (h *Handler) handleGetResidence(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetResidence(r.Context(), chi.URLParam(r, "residenceId"))
	reply(h, w, r, "get_residence", out, err)
}

func (h *Handler) handleGetResidenceByRentalID(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetResidenceByRentalID(r.Context(), chi.URLParam(r, "rentalId"))
	reply(h, w, r, "get_residence_by_rental_id", out, err)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListRooms(r.Context(), r.URL.Query().Get("residenceId"))
	reply(h, w, r, "list_rooms", out, err)
}

func (h *Handler) handleListComponents(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListComponents(r.Context(), r.URL.Query().Get("roomId"))
	reply(h, w, r, "list_components", out, err)
}

func (h *Handler) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetComponent(r.Context(), chi.URLParam(r, "componentId"))
	reply(h, w, r, "get_component", out, err)
}

func (h *Handler) handleGetComponentModel(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetComponentModel(r.Context(), chi.URLParam(r, "modelId"))
	reply(h, w, r, "get_component_model", out, err)
}

func (h *Handler) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[propertybase.ComponentInput](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.svc.CreateComponent(ctx, *in)
	if err != nil {
		reply(h, w, r, "create_component", out, err)
		return
	}
	httputil.WriteContent(w, http.StatusCreated, out)
}

func (h *Handler) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := httputil.DecodeAndPrepare[propertybase.ComponentUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.svc.UpdateComponent(ctx, chi.URLParam(r, "componentId"), *in)
	reply(h, w, r, "update_component", out, err)
}

func (h *Handler) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteComponent(r.Context(), chi.URLParam(r, "componentId")); err != nil {
		reply[any](h, w, r, "delete_component", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
