package workorder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/platform/upstream"
)

func TestCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/work-orders", r.URL.Path)
		var in CreateInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Droppande kran", in.Caption)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"content":{"id":"wo-1","caption":"Droppande kran","status":"Registered"}}`)
	}))
	t.Cleanup(srv.Close)
	a := New(upstream.NewClient(upstream.Config{Service: "work_order", BaseURL: srv.URL}))

	wo, err := a.Create(context.Background(), CreateInput{RentalPropertyID: "705-011-03-0101", ContactCode: "P12345", Caption: "Droppande kran"})

	require.NoError(t, err)
	assert.Equal(t, "wo-1", wo.ID)
}

func TestListByRentalPropertyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/work-orders/by-rental-property-id/705-011-03-0101", r.URL.Path)
		_, _ = io.WriteString(w, `{"content":[{"id":"wo-1"},{"id":"wo-2"}]}`)
	}))
	t.Cleanup(srv.Close)
	a := New(upstream.NewClient(upstream.Config{Service: "work_order", BaseURL: srv.URL}))

	orders, err := a.ListByRentalPropertyID(context.Background(), "705-011-03-0101")

	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
