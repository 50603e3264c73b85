// Package tenants assembles the tenant view: contact card, leases and
// invoices fetched concurrently from leasing and economy.
package tenants

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"onecore/internal/adapters/economy"
	"onecore/internal/adapters/leasing"
	"onecore/internal/platform/metrics"
	"onecore/internal/platform/tracer"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/requestcontext"
	"onecore/pkg/validation"
)

type LeasingSource interface {
	GetContact(ctx context.Context, contactCode string) (leasing.Contact, error)
	ListLeasesByContactCode(ctx context.Context, contactCode string, f leasing.LeaseFilter) ([]leasing.Lease, error)
}

type InvoiceSource interface {
	ListInvoicesByContactCode(ctx context.Context, contactCode string) ([]economy.Invoice, error)
}

// Tenant is the aggregate served to the property manager UI. Invoices is
// nil and InvoicesUnavailable set when economy could not answer.
type Tenant struct {
	Contact             leasing.Contact   `json:"contact"`
	Leases              []leasing.Lease   `json:"leases"`
	Invoices            []economy.Invoice `json:"invoices"`
	InvoicesUnavailable bool              `json:"invoicesUnavailable,omitempty"`
}

type Service struct {
	leasing  LeasingSource
	invoices InvoiceSource
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
}

func NewService(leasing LeasingSource, invoices InvoiceSource, logger *slog.Logger, m *metrics.Metrics, t tracer.Tracer) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Service{leasing: leasing, invoices: invoices, logger: logger, metrics: m, tracer: t}
}

// GetByContactCode fetches the three parts concurrently. Contact and leases
// are required and their failures propagate; invoices are optional.
func (s *Service) GetByContactCode(ctx context.Context, contactCode string) (tenant Tenant, err error) {
	if !validation.IsContactCode(contactCode) {
		return Tenant{}, dErrors.New(dErrors.CodeBadRequest, "invalid contact code")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanTenantAggregate,
		tracer.String(tracer.AttrContactCode, tracer.HashIdentifier(contactCode)),
	)
	defer func() { span.End(err) }()

	var (
		contact    leasing.Contact
		leases     []leasing.Lease
		invoices   []economy.Invoice
		invoiceErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.leasing.GetContact(gctx, contactCode)
		if err != nil {
			return err
		}
		contact = c
		return nil
	})
	g.Go(func() error {
		l, err := s.leasing.ListLeasesByContactCode(gctx, contactCode, leasing.LeaseFilter{
			IncludeUpcomingLeases:   true,
			IncludeTerminatedLeases: true,
		})
		if err != nil {
			return err
		}
		leases = l
		return nil
	})
	g.Go(func() error {
		invoices, invoiceErr = s.invoices.ListInvoicesByContactCode(gctx, contactCode)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Tenant{}, upstream.ToDomain(err)
	}

	tenant = Tenant{Contact: contact, Leases: leases, Invoices: invoices}
	if tenant.Leases == nil {
		tenant.Leases = []leasing.Lease{}
	}
	switch {
	case invoiceErr != nil:
		tenant.Invoices = nil
		tenant.InvoicesUnavailable = true
		span.SetAttributes(tracer.Bool("tenant.invoices_unavailable", true))
		s.metrics.IncTenantPartialResponse()
		s.logger.WarnContext(ctx, "invoices unavailable for tenant",
			"request_id", requestcontext.RequestID(ctx),
			"contact_code_hash", tracer.HashIdentifier(contactCode),
			"error", invoiceErr,
		)
	case tenant.Invoices == nil:
		tenant.Invoices = []economy.Invoice{}
	}
	return tenant, nil
}
