// Package propertybase adapts the property-base microservice: the
// company > property > building > residence > room > component tree and
// the document metadata attached to components.
package propertybase

import (
	"context"
	"net/http"
	"net/url"

	"onecore/internal/platform/upstream"
)

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ListCompanies(ctx context.Context) ([]Company, error) {
	var out []Company
	err := a.client.GetJSON(ctx, "/companies", nil, &out)
	return out, err
}

func (a *Adapter) ListProperties(ctx context.Context, companyCode string) ([]Property, error) {
	var out []Property
	err := a.client.GetJSON(ctx, "/properties", url.Values{"companyCode": {companyCode}}, &out)
	return out, err
}

func (a *Adapter) GetProperty(ctx context.Context, id string) (Property, error) {
	var out Property
	err := a.client.GetJSON(ctx, upstream.PathJoin("properties", id), nil, &out)
	return out, err
}

func (a *Adapter) ListBuildings(ctx context.Context, propertyCode string) ([]Building, error) {
	var out []Building
	err := a.client.GetJSON(ctx, "/buildings", url.Values{"propertyCode": {propertyCode}}, &out)
	return out, err
}

func (a *Adapter) GetBuilding(ctx context.Context, id string) (Building, error) {
	var out Building
	err := a.client.GetJSON(ctx, upstream.PathJoin("buildings", id), nil, &out)
	return out, err
}

// ListResidences lists residences in a building, optionally one staircase.
func (a *Adapter) ListResidences(ctx context.Context, buildingCode, staircaseCode string) ([]Residence, error) {
	q := url.Values{"buildingCode": {buildingCode}}
	if staircaseCode != "" {
		q.Set("staircaseCode", staircaseCode)
	}
	var out []Residence
	err := a.client.GetJSON(ctx, "/residences", q, &out)
	return out, err
}

func (a *Adapter) GetResidence(ctx context.Context, id string) (Residence, error) {
	var out Residence
	err := a.client.GetJSON(ctx, upstream.PathJoin("residences", id), nil, &out)
	return out, err
}

func (a *Adapter) GetResidenceByRentalID(ctx context.Context, rentalID string) (Residence, error) {
	var out Residence
	err := a.client.GetJSON(ctx, upstream.PathJoin("residences", "rental-id", rentalID), nil, &out)
	return out, err
}

func (a *Adapter) ListRooms(ctx context.Context, residenceID string) ([]Room, error) {
	var out []Room
	err := a.client.GetJSON(ctx, "/rooms", url.Values{"residenceId": {residenceID}}, &out)
	return out, err
}

func (a *Adapter) ListComponents(ctx context.Context, roomID string) ([]Component, error) {
	var out []Component
	err := a.client.GetJSON(ctx, "/components", url.Values{"roomId": {roomID}}, &out)
	return out, err
}

func (a *Adapter) GetComponent(ctx context.Context, id string) (Component, error) {
	var out Component
	err := a.client.GetJSON(ctx, upstream.PathJoin("components", id), nil, &out)
	return out, err
}

func (a *Adapter) CreateComponent(ctx context.Context, in ComponentInput) (Component, error) {
	var out Component
	err := a.client.SendJSON(ctx, http.MethodPost, "/components", in, &out)
	return out, err
}

func (a *Adapter) UpdateComponent(ctx context.Context, id string, in ComponentUpdate) (Component, error) {
	var out Component
	err := a.client.SendJSON(ctx, http.MethodPut, upstream.PathJoin("components", id), in, &out)
	return out, err
}

func (a *Adapter) DeleteComponent(ctx context.Context, id string) error {
	return a.client.SendJSON(ctx, http.MethodDelete, upstream.PathJoin("components", id), nil, nil)
}

func (a *Adapter) GetComponentModel(ctx context.Context, id string) (ComponentModel, error) {
	var out ComponentModel
	err := a.client.GetJSON(ctx, upstream.PathJoin("component-models", id), nil, &out)
	return out, err
}

func (a *Adapter) CreateDocument(ctx context.Context, in DocumentInput) (Document, error) {
	var out Document
	err := a.client.SendJSON(ctx, http.MethodPost, "/documents", in, &out)
	return out, err
}

// ListDocuments returns the metadata attached to a component or component model.
func (a *Adapter) ListDocuments(ctx context.Context, owner OwnerType, ownerID string) ([]Document, error) {
	var out []Document
	err := a.client.GetJSON(ctx, upstream.PathJoin("documents", string(owner)+"s", ownerID), nil, &out)
	return out, err
}

func (a *Adapter) GetDocument(ctx context.Context, id string) (Document, error) {
	var out Document
	err := a.client.GetJSON(ctx, upstream.PathJoin("documents", id), nil, &out)
	return out, err
}

func (a *Adapter) DeleteDocument(ctx context.Context, id string) error {
	return a.client.SendJSON(ctx, http.MethodDelete, upstream.PathJoin("documents", id), nil, nil)
}
