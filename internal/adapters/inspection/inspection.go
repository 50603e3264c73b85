// Package inspection adapts the inspection microservice.
package inspection

import (
	"context"
	"time"

	"onecore/internal/platform/upstream"
)

type Inspection struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	Date            *time.Time `json:"date,omitempty"`
	Inspector       string     `json:"inspector"`
	Type            string     `json:"type"`
	Address         string     `json:"address,omitempty"`
	ResidenceID     string     `json:"residenceId"`
	LeaseID         string     `json:"leaseId,omitempty"`
	MasterKeyAccess string     `json:"masterKeyAccess,omitempty"`
	IsFurnished     bool       `json:"isFurnished"`
}

type Remark struct {
	ID        string  `json:"id"`
	Component string  `json:"component"`
	Condition string  `json:"condition"`
	Action    string  `json:"action,omitempty"`
	Cost      float64 `json:"cost,omitempty"`
}

type Room struct {
	RoomID  string   `json:"roomId"`
	Name    string   `json:"name"`
	Remarks []Remark `json:"remarks,omitempty"`
}

// Detail is an inspection with its per-room protocol.
type Detail struct {
	Inspection
	Rooms []Room `json:"rooms"`
}

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

// ListInspections returns one page plus the total number of inspections.
func (a *Adapter) ListInspections(ctx context.Context, page, limit int) ([]Inspection, int, error) {
	var out []Inspection
	total, err := a.client.GetPage(ctx, "/inspections", upstream.PageQuery(page, limit), &out)
	return out, total, err
}

func (a *Adapter) GetInspection(ctx context.Context, id string) (Detail, error) {
	var out Detail
	err := a.client.GetJSON(ctx, upstream.PathJoin("inspections", id), nil, &out)
	return out, err
}

func (a *Adapter) ListInspectionsByResidence(ctx context.Context, residenceID string) ([]Inspection, error) {
	var out []Inspection
	err := a.client.GetJSON(ctx, upstream.PathJoin("inspections", "residence", residenceID), nil, &out)
	return out, err
}
