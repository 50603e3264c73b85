// Package workorder adapts the work-order (maintenance request) microservice.
package workorder

import (
	"context"
	"net/http"
	"strings"
	"time"

	"onecore/internal/platform/upstream"
	"onecore/pkg/validation"
)

type WorkOrder struct {
	ID               string     `json:"id"`
	Code             string     `json:"code,omitempty"`
	Caption          string     `json:"caption"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	ContactCode      string     `json:"contactCode,omitempty"`
	RentalPropertyID string     `json:"rentalPropertyId,omitempty"`
	Priority         string     `json:"priority,omitempty"`
	Registered       *time.Time `json:"registered,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
}

// CreateInput is a new maintenance request.
type CreateInput struct {
	RentalPropertyID string `json:"rentalPropertyId" validate:"required,notblank"`
	ContactCode      string `json:"contactCode" validate:"required,contactcode"`
	Caption          string `json:"caption" validate:"required,notblank,max=200"`
	Description      string `json:"description" validate:"max=4000"`
	Priority         string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	MasterKeyAllowed bool   `json:"masterKeyAllowed"`
}

// Normalize trims free-text fields before validation.
func (in *CreateInput) Normalize() {
	in.Caption = strings.TrimSpace(in.Caption)
	in.Description = strings.TrimSpace(in.Description)
}

func (in *CreateInput) Validate() error { return validation.Validate(in) }

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ListByContactCode(ctx context.Context, contactCode string) ([]WorkOrder, error) {
	var out []WorkOrder
	err := a.client.GetJSON(ctx, upstream.PathJoin("work-orders", "by-contact-code", contactCode), nil, &out)
	return out, err
}

func (a *Adapter) ListByRentalPropertyID(ctx context.Context, rentalPropertyID string) ([]WorkOrder, error) {
	var out []WorkOrder
	err := a.client.GetJSON(ctx, upstream.PathJoin("work-orders", "by-rental-property-id", rentalPropertyID), nil, &out)
	return out, err
}

func (a *Adapter) Create(ctx context.Context, in CreateInput) (WorkOrder, error) {
	var out WorkOrder
	err := a.client.SendJSON(ctx, http.MethodPost, "/work-orders", in, &out)
	return out, err
}
