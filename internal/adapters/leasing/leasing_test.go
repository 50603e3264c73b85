package leasing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/platform/upstream"
)

func newTestAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(upstream.NewClient(upstream.Config{Service: "leasing", BaseURL: srv.URL}))
}

func TestGetLease(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leases/406-028-02-0101%2F12", r.URL.EscapedPath())
		assert.Equal(t, "true", r.URL.Query().Get("includeContacts"))
		_, _ = io.WriteString(w, `{"content":{"leaseId":"406-028-02-0101/12","status":"Current","tenants":[{"contactCode":"P12345","fullName":"Anna Svensson"}]}}`)
	})

	lease, err := a.GetLease(context.Background(), "406-028-02-0101/12", true)

	require.NoError(t, err)
	assert.Equal(t, "Current", lease.Status)
	require.Len(t, lease.Tenants, 1)
	assert.Equal(t, "P12345", lease.Tenants[0].ContactCode)
}

func TestGetLeaseNotFound(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := a.GetLease(context.Background(), "missing", false)

	assert.Equal(t, upstream.KindNotFound, upstream.KindOf(err))
}

func TestListLeasesForwardsFilter(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leases/by-contact-code/P12345", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeTerminatedLeases"))
		assert.Empty(t, r.URL.Query().Get("includeUpcomingLeases"))
		_, _ = io.WriteString(w, `{"content":[{"leaseId":"a"},{"leaseId":"b"}]}`)
	})

	leases, err := a.ListLeasesByContactCode(context.Background(), "P12345", LeaseFilter{IncludeTerminatedLeases: true})

	require.NoError(t, err)
	assert.Len(t, leases, 2)
}

func TestSearchContacts(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts/search", r.URL.Path)
		assert.Equal(t, "sven", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `{"content":[{"contactCode":"P1","fullName":"Sven Berg"}]}`)
	})

	hits, err := a.SearchContacts(context.Background(), "sven")

	require.NoError(t, err)
	assert.Equal(t, []ContactSummary{{ContactCode: "P1", FullName: "Sven Berg"}}, hits)
}

func TestListRentalBlocks(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rental-properties/705-011-03-0101/blocks", r.URL.Path)
		_, _ = io.WriteString(w, `{"content":[{"id":"b1","blockReason":"Renovering","fromDate":"2024-05-01T00:00:00Z"}]}`)
	})

	blocks, err := a.ListRentalBlocks(context.Background(), "705-011-03-0101")

	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Renovering", blocks[0].BlockReason)
	require.NotNil(t, blocks[0].FromDate)
	assert.Equal(t, 2024, blocks[0].FromDate.Year())
}

func TestConflictKind(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"contact locked"}`)
	})

	_, err := a.GetContact(context.Background(), "P1")

	var upErr *upstream.Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, upstream.KindConflict, upErr.Kind)
	assert.Equal(t, "contact locked", upErr.Message)
}
