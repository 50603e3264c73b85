package tenants

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/adapters/economy"
	"onecore/internal/adapters/leasing"
	"onecore/internal/platform/metrics"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
)

type stubLeasing struct {
	contact    leasing.Contact
	contactErr error
	leases     []leasing.Lease
	leasesErr  error
	filter     leasing.LeaseFilter
}

func (s *stubLeasing) GetContact(ctx context.Context, _ string) (leasing.Contact, error) {
	return s.contact, s.contactErr
}

func (s *stubLeasing) ListLeasesByContactCode(ctx context.Context, _ string, f leasing.LeaseFilter) ([]leasing.Lease, error) {
	s.filter = f
	return s.leases, s.leasesErr
}

type stubInvoices struct {
	invoices []economy.Invoice
	err      error
	calls    atomic.Int32
}

func (s *stubInvoices) ListInvoicesByContactCode(context.Context, string) ([]economy.Invoice, error) {
	s.calls.Add(1)
	return s.invoices, s.err
}

func TestGetByContactCodeCombinesAllParts(t *testing.T) {
	l := &stubLeasing{
		contact: leasing.Contact{ContactCode: "P123456", FullName: "Anna Andersson"},
		leases:  []leasing.Lease{{LeaseID: "L1"}},
	}
	inv := &stubInvoices{invoices: []economy.Invoice{{InvoiceID: "I1"}}}
	svc := NewService(l, inv, nil, nil, nil)

	got, err := svc.GetByContactCode(context.Background(), "P123456")

	require.NoError(t, err)
	assert.Equal(t, "Anna Andersson", got.Contact.FullName)
	assert.Len(t, got.Leases, 1)
	assert.Len(t, got.Invoices, 1)
	assert.False(t, got.InvoicesUnavailable)
	assert.True(t, l.filter.IncludeUpcomingLeases)
	assert.True(t, l.filter.IncludeTerminatedLeases)
}

func TestGetByContactCodeInvoicesOptional(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	l := &stubLeasing{contact: leasing.Contact{ContactCode: "P123456"}}
	inv := &stubInvoices{err: &upstream.Error{Kind: upstream.KindUnknown, Service: "economy", Status: 502}}
	svc := NewService(l, inv, nil, m, nil)

	got, err := svc.GetByContactCode(context.Background(), "P123456")

	require.NoError(t, err)
	assert.True(t, got.InvoicesUnavailable)
	assert.Nil(t, got.Invoices)
	assert.NotNil(t, got.Leases, "empty leases serialise as []")
	assert.InDelta(t, 1, testutil.ToFloat64(m.TenantPartialResponse), 0)
}

func TestGetByContactCodeRequiredPartsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		leasing *stubLeasing
		code    dErrors.Code
	}{
		{
			name:    "contact not found",
			leasing: &stubLeasing{contactErr: &upstream.Error{Kind: upstream.KindNotFound, Service: "leasing", Status: 404}},
			code:    dErrors.CodeNotFound,
		},
		{
			name:    "leases forbidden",
			leasing: &stubLeasing{leasesErr: &upstream.Error{Kind: upstream.KindForbidden, Service: "leasing", Status: 403}},
			code:    dErrors.CodeForbidden,
		},
		{
			name:    "leases transport failure",
			leasing: &stubLeasing{leasesErr: &upstream.Error{Kind: upstream.KindUnknown, Service: "leasing", Err: errors.New("dial tcp")}},
			code:    dErrors.CodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.leasing, &stubInvoices{}, nil, nil, nil)

			_, err := svc.GetByContactCode(context.Background(), "P123456")

			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGetByContactCodeRejectsMalformedCode(t *testing.T) {
	inv := &stubInvoices{}
	svc := NewService(&stubLeasing{}, inv, nil, nil, nil)

	_, err := svc.GetByContactCode(context.Background(), "not a code")

	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Zero(t, inv.calls.Load(), "no upstream call for invalid input")
}
