// Package properties serves the property tree from property-base. Tree
// listings go through the read-through cache; component mutations
// invalidate the owning room's listing and are audited.
package properties

import (
	"context"
	"log/slog"
	"strings"

	"onecore/internal/adapters/propertybase"
	"onecore/internal/audit"
	"onecore/internal/platform/upstream"
	"onecore/internal/properties/cache"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/requestcontext"
)

// Source is the property-base surface the service needs.
type Source interface {
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
	CreateComponent(ctx context.Context, in propertybase.ComponentInput) (propertybase.Component, error)
	UpdateComponent(ctx context.Context, id string, in propertybase.ComponentUpdate) (propertybase.Component, error)
	DeleteComponent(ctx context.Context, id string) error
	GetComponentModel(ctx context.Context, id string) (propertybase.ComponentModel, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action audit.Action, resource, resourceID string, outcome audit.Outcome, details map[string]string)
}

type Service struct {
	source Source
	cache  *cache.Cache
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(source Source, c *cache.Cache, recorder AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, cache: c, audit: recorder, logger: logger}
}

func (s *Service) ListCompanies(ctx context.Context) ([]propertybase.Company, error) {
	out, err := cache.Load(ctx, s.cache, cache.CompaniesKey(), s.source.ListCompanies)
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) ListProperties(ctx context.Context, companyCode string) ([]propertybase.Property, error) {
	if err := required("companyCode", companyCode); err != nil {
		return nil, err
	}
	out, err := cache.Load(ctx, s.cache, cache.PropertiesKey(companyCode), func(ctx context.Context) ([]propertybase.Property, error) {
		return s.source.ListProperties(ctx, companyCode)
	})
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) GetProperty(ctx context.Context, id string) (propertybase.Property, error) {
	out, err := s.source.GetProperty(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) ListBuildings(ctx context.Context, propertyCode string) ([]propertybase.Building, error) {
	if err := required("propertyCode", propertyCode); err != nil {
		return nil, err
	}
	out, err := cache.Load(ctx, s.cache, cache.BuildingsKey(propertyCode), func(ctx context.Context) ([]propertybase.Building, error) {
		return s.source.ListBuildings(ctx, propertyCode)
	})
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) GetBuilding(ctx context.Context, id string) (propertybase.Building, error) {
	out, err := s.source.GetBuilding(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) ListResidences(ctx context.Context, buildingCode, staircaseCode string) ([]propertybase.Residence, error) {
	if err := required("buildingCode", buildingCode); err != nil {
		return nil, err
	}
	out, err := s.source.ListResidences(ctx, buildingCode, staircaseCode)
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) GetResidence(ctx context.Context, id string) (propertybase.Residence, error) {
	out, err := s.source.GetResidence(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) GetResidenceByRentalID(ctx context.Context, rentalID string) (propertybase.Residence, error) {
	out, err := s.source.GetResidenceByRentalID(ctx, rentalID)
	return out, upstream.ToDomain(err)
}

func (s *Service) ListRooms(ctx context.Context, residenceID string) ([]propertybase.Room, error) {
	if err := required("residenceId", residenceID); err != nil {
		return nil, err
	}
	out, err := s.source.ListRooms(ctx, residenceID)
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) ListComponents(ctx context.Context, roomID string) ([]propertybase.Component, error) {
	if err := required("roomId", roomID); err != nil {
		return nil, err
	}
	out, err := cache.Load(ctx, s.cache, cache.ComponentsKey(roomID), func(ctx context.Context) ([]propertybase.Component, error) {
		return s.source.ListComponents(ctx, roomID)
	})
	return orEmpty(out), upstream.ToDomain(err)
}

func (s *Service) GetComponent(ctx context.Context, id string) (propertybase.Component, error) {
	out, err := s.source.GetComponent(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) GetComponentModel(ctx context.Context, id string) (propertybase.ComponentModel, error) {
	out, err := s.source.GetComponentModel(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) CreateComponent(ctx context.Context, in propertybase.ComponentInput) (propertybase.Component, error) {
	out, err := s.source.CreateComponent(ctx, in)
	if err != nil {
		s.audit.Record(ctx, audit.ActionComponentCreated, audit.ResourceComponent, "", audit.OutcomeFailure,
			map[string]string{"roomId": in.RoomID, "error_kind": string(upstream.KindOf(err))})
		return propertybase.Component{}, upstream.ToDomain(err)
	}
	s.cache.Invalidate(ctx, cache.ComponentsKey(in.RoomID))
	s.audit.Record(ctx, audit.ActionComponentCreated, audit.ResourceComponent, out.ID, audit.OutcomeSuccess,
		map[string]string{"roomId": in.RoomID})
	return out, nil
}

func (s *Service) UpdateComponent(ctx context.Context, id string, in propertybase.ComponentUpdate) (propertybase.Component, error) {
	out, err := s.source.UpdateComponent(ctx, id, in)
	if err != nil {
		s.audit.Record(ctx, audit.ActionComponentUpdated, audit.ResourceComponent, id, audit.OutcomeFailure,
			map[string]string{"error_kind": string(upstream.KindOf(err))})
		return propertybase.Component{}, upstream.ToDomain(err)
	}
	s.cache.Invalidate(ctx, cache.ComponentsKey(out.RoomID))
	s.audit.Record(ctx, audit.ActionComponentUpdated, audit.ResourceComponent, id, audit.OutcomeSuccess,
		map[string]string{"roomId": out.RoomID})
	return out, nil
}

// DeleteComponent looks the component up first so the owning room's cached
// listing can be invalidated.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	existing, err := s.source.GetComponent(ctx, id)
	if err != nil {
		return upstream.ToDomain(err)
	}
	if err := s.source.DeleteComponent(ctx, id); err != nil {
		s.audit.Record(ctx, audit.ActionComponentDeleted, audit.ResourceComponent, id, audit.OutcomeFailure,
			map[string]string{"error_kind": string(upstream.KindOf(err))})
		return upstream.ToDomain(err)
	}
	s.cache.Invalidate(ctx, cache.ComponentsKey(existing.RoomID))
	s.audit.Record(ctx, audit.ActionComponentDeleted, audit.ResourceComponent, id, audit.OutcomeSuccess,
		map[string]string{"roomId": existing.RoomID})
	s.logger.InfoContext(ctx, "component deleted",
		"component_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeBadRequest, name+" is required")
	}
	return nil
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
