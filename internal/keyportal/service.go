// Package keyportal is the backend of the keys portal: key systems, keys
// and key loans. Every mutation is audited with the calling principal.
package keyportal

import (
	"context"
	"log/slog"
	"time"

	"onecore/internal/adapters/keys"
	"onecore/internal/audit"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/requestcontext"
)

type Source interface {
	ListKeySystems(ctx context.Context, q string, page, limit int) ([]keys.KeySystem, int, error)
	GetKeySystem(ctx context.Context, id string) (keys.KeySystem, error)
	CreateKeySystem(ctx context.Context, in keys.KeySystemInput) (keys.KeySystem, error)
	UpdateKeySystem(ctx context.Context, id string, in keys.KeySystemPatch) (keys.KeySystem, error)
	DeleteKeySystem(ctx context.Context, id string) error
	ListKeys(ctx context.Context, f keys.KeyFilter, page, limit int) ([]keys.Key, int, error)
	GetKey(ctx context.Context, id string) (keys.Key, error)
	CreateKey(ctx context.Context, in keys.KeyInput) (keys.Key, error)
	UpdateKey(ctx context.Context, id string, in keys.KeyPatch) (keys.Key, error)
	DeleteKey(ctx context.Context, id string) error
	ListKeyLoans(ctx context.Context, f keys.KeyLoanFilter) ([]keys.KeyLoan, error)
	CreateKeyLoan(ctx context.Context, in keys.KeyLoanInput) (keys.KeyLoan, error)
	ReturnKeyLoan(ctx context.Context, id string, returnedAt time.Time, by string) (keys.KeyLoan, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action audit.Action, resource, resourceID string, outcome audit.Outcome, details map[string]string)
}

type Service struct {
	source Source
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(source Source, recorder AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, audit: recorder, logger: logger}
}

// Page is one page of a listing plus the upstream total.
type Page[T any] struct {
	Items []T
	Total int
}

func (s *Service) ListKeySystems(ctx context.Context, q string, page, limit int) (Page[keys.KeySystem], error) {
	items, total, err := s.source.ListKeySystems(ctx, q, page, limit)
	if err != nil {
		return Page[keys.KeySystem]{}, upstream.ToDomain(err)
	}
	return Page[keys.KeySystem]{Items: orEmpty(items), Total: total}, nil
}

func (s *Service) GetKeySystem(ctx context.Context, id string) (keys.KeySystem, error) {
	out, err := s.source.GetKeySystem(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) CreateKeySystem(ctx context.Context, in keys.KeySystemInput) (keys.KeySystem, error) {
	out, err := s.source.CreateKeySystem(ctx, in)
	s.record(ctx, audit.ActionKeySystemCreated, audit.ResourceKeySystem, out.ID, err,
		map[string]string{"systemCode": in.SystemCode})
	return out, upstream.ToDomain(err)
}

func (s *Service) UpdateKeySystem(ctx context.Context, id string, in keys.KeySystemPatch) (keys.KeySystem, error) {
	out, err := s.source.UpdateKeySystem(ctx, id, in)
	s.record(ctx, audit.ActionKeySystemUpdated, audit.ResourceKeySystem, id, err, nil)
	return out, upstream.ToDomain(err)
}

func (s *Service) DeleteKeySystem(ctx context.Context, id string) error {
	err := s.source.DeleteKeySystem(ctx, id)
	s.record(ctx, audit.ActionKeySystemDeleted, audit.ResourceKeySystem, id, err, nil)
	return upstream.ToDomain(err)
}

func (s *Service) ListKeys(ctx context.Context, f keys.KeyFilter, page, limit int) (Page[keys.Key], error) {
	items, total, err := s.source.ListKeys(ctx, f, page, limit)
	if err != nil {
		return Page[keys.Key]{}, upstream.ToDomain(err)
	}
	return Page[keys.Key]{Items: orEmpty(items), Total: total}, nil
}

func (s *Service) GetKey(ctx context.Context, id string) (keys.Key, error) {
	out, err := s.source.GetKey(ctx, id)
	return out, upstream.ToDomain(err)
}

func (s *Service) CreateKey(ctx context.Context, in keys.KeyInput) (keys.Key, error) {
	out, err := s.source.CreateKey(ctx, in)
	s.record(ctx, audit.ActionKeyCreated, audit.ResourceKey, out.ID, err,
		map[string]string{"keyType": in.KeyType, "rentalObjectCode": in.RentalObjectCode})
	return out, upstream.ToDomain(err)
}

func (s *Service) UpdateKey(ctx context.Context, id string, in keys.KeyPatch) (keys.Key, error) {
	out, err := s.source.UpdateKey(ctx, id, in)
	s.record(ctx, audit.ActionKeyUpdated, audit.ResourceKey, id, err, nil)
	return out, upstream.ToDomain(err)
}

func (s *Service) DeleteKey(ctx context.Context, id string) error {
	err := s.source.DeleteKey(ctx, id)
	s.record(ctx, audit.ActionKeyDeleted, audit.ResourceKey, id, err, nil)
	return upstream.ToDomain(err)
}

// ListKeyLoans requires a key or a borrower; listing every loan is not offered.
func (s *Service) ListKeyLoans(ctx context.Context, f keys.KeyLoanFilter) ([]keys.KeyLoan, error) {
	if f.KeyID == "" && f.Contact == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "keyId or contact is required")
	}
	out, err := s.source.ListKeyLoans(ctx, f)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	return orEmpty(out), nil
}

// CreateKeyLoan stamps the loan with the calling principal unless the body
// names someone else.
func (s *Service) CreateKeyLoan(ctx context.Context, in keys.KeyLoanInput) (keys.KeyLoan, error) {
	if in.CreatedBy == "" {
		in.CreatedBy = actor(ctx)
	}
	out, err := s.source.CreateKeyLoan(ctx, in)
	s.record(ctx, audit.ActionKeyLoanCreated, audit.ResourceKeyLoan, out.ID, err,
		map[string]string{"contact": in.Contact})
	return out, upstream.ToDomain(err)
}

// ReturnKeyLoan marks the loan returned at the request time.
func (s *Service) ReturnKeyLoan(ctx context.Context, id string) (keys.KeyLoan, error) {
	out, err := s.source.ReturnKeyLoan(ctx, id, requestcontext.Now(ctx), actor(ctx))
	s.record(ctx, audit.ActionKeyLoanReturned, audit.ResourceKeyLoan, id, err, nil)
	return out, upstream.ToDomain(err)
}

// record audits a mutation; a failed call is recorded with its error kind.
func (s *Service) record(ctx context.Context, action audit.Action, resource, id string, err error, details map[string]string) {
	outcome := audit.OutcomeSuccess
	if err != nil {
		outcome = audit.OutcomeFailure
		if details == nil {
			details = make(map[string]string, 1)
		}
		details["error_kind"] = string(upstream.KindOf(err))
		s.logger.WarnContext(ctx, "key portal mutation failed",
			"action", action,
			"resource_id", id,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	s.audit.Record(ctx, action, resource, id, outcome, details)
}

func actor(ctx context.Context) string {
	if p, ok := requestcontext.GetPrincipal(ctx); ok {
		return p.Actor()
	}
	return ""
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
