// Package keys adapts the keys microservice backing the keys portal:
// key systems, keys and key loans.
package keys

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"onecore/internal/platform/upstream"
)

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

// ListKeySystems returns one page of key systems, optionally filtered by a
// free-text query, and the total count.
func (a *Adapter) ListKeySystems(ctx context.Context, q string, page, limit int) ([]KeySystem, int, error) {
	query := upstream.PageQuery(page, limit)
	if q != "" {
		query.Set("q", q)
	}
	var out []KeySystem
	total, err := a.client.GetPage(ctx, "/key-systems", query, &out)
	return out, total, err
}

func (a *Adapter) GetKeySystem(ctx context.Context, id string) (KeySystem, error) {
	var out KeySystem
	err := a.client.GetJSON(ctx, upstream.PathJoin("key-systems", id), nil, &out)
	return out, err
}

func (a *Adapter) CreateKeySystem(ctx context.Context, in KeySystemInput) (KeySystem, error) {
	var out KeySystem
	err := a.client.SendJSON(ctx, http.MethodPost, "/key-systems", in, &out)
	return out, err
}

func (a *Adapter) UpdateKeySystem(ctx context.Context, id string, in KeySystemPatch) (KeySystem, error) {
	var out KeySystem
	err := a.client.SendJSON(ctx, http.MethodPatch, upstream.PathJoin("key-systems", id), in, &out)
	return out, err
}

func (a *Adapter) DeleteKeySystem(ctx context.Context, id string) error {
	return a.client.SendJSON(ctx, http.MethodDelete, upstream.PathJoin("key-systems", id), nil, nil)
}

func (a *Adapter) ListKeys(ctx context.Context, f KeyFilter, page, limit int) ([]Key, int, error) {
	query := upstream.PageQuery(page, limit)
	if f.RentalObjectCode != "" {
		query.Set("rentalObjectCode", f.RentalObjectCode)
	}
	if f.KeySystemID != "" {
		query.Set("keySystemId", f.KeySystemID)
	}
	var out []Key
	total, err := a.client.GetPage(ctx, "/keys", query, &out)
	return out, total, err
}

func (a *Adapter) GetKey(ctx context.Context, id string) (Key, error) {
	var out Key
	err := a.client.GetJSON(ctx, upstream.PathJoin("keys", id), nil, &out)
	return out, err
}

func (a *Adapter) CreateKey(ctx context.Context, in KeyInput) (Key, error) {
	var out Key
	err := a.client.SendJSON(ctx, http.MethodPost, "/keys", in, &out)
	return out, err
}

func (a *Adapter) UpdateKey(ctx context.Context, id string, in KeyPatch) (Key, error) {
	var out Key
	err := a.client.SendJSON(ctx, http.MethodPatch, upstream.PathJoin("keys", id), in, &out)
	return out, err
}

func (a *Adapter) DeleteKey(ctx context.Context, id string) error {
	return a.client.SendJSON(ctx, http.MethodDelete, upstream.PathJoin("keys", id), nil, nil)
}

func (a *Adapter) ListKeyLoans(ctx context.Context, f KeyLoanFilter) ([]KeyLoan, error) {
	q := url.Values{}
	if f.KeyID != "" {
		q.Set("keyId", f.KeyID)
	}
	if f.Contact != "" {
		q.Set("contact", f.Contact)
	}
	var out []KeyLoan
	err := a.client.GetJSON(ctx, "/key-loans", q, &out)
	return out, err
}

func (a *Adapter) CreateKeyLoan(ctx context.Context, in KeyLoanInput) (KeyLoan, error) {
	var out KeyLoan
	err := a.client.SendJSON(ctx, http.MethodPost, "/key-loans", in, &out)
	return out, err
}

// ReturnKeyLoan marks a loan returned at returnedAt.
func (a *Adapter) ReturnKeyLoan(ctx context.Context, id string, returnedAt time.Time, by string) (KeyLoan, error) {
	body := struct {
		ReturnedAt time.Time `json:"returnedAt"`
		UpdatedBy  string    `json:"updatedBy,omitempty"`
	}{ReturnedAt: returnedAt, UpdatedBy: by}
	var out KeyLoan
	err := a.client.SendJSON(ctx, http.MethodPost, upstream.PathJoin("key-loans", id)+"/return", body, &out)
	return out, err
}
