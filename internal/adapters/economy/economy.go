// Package economy adapts the economy microservice (invoices and payments).
package economy

import (
	"context"
	"time"

	"onecore/internal/platform/upstream"
)

type Invoice struct {
	InvoiceID       string     `json:"invoiceId"`
	LeaseID         string     `json:"leaseId,omitempty"`
	Amount          float64    `json:"amount"`
	RemainingAmount float64    `json:"remainingAmount"`
	InvoiceDate     *time.Time `json:"invoiceDate,omitempty"`
	ExpirationDate  *time.Time `json:"expirationDate,omitempty"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	PaymentStatus   string     `json:"paymentStatus"`
	Type            string     `json:"type,omitempty"`
	Source          string     `json:"source,omitempty"`
}

type PaymentEvent struct {
	ID          string     `json:"id"`
	InvoiceID   string     `json:"invoiceId"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
	Text        string     `json:"text,omitempty"`
}

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ListInvoicesByContactCode(ctx context.Context, contactCode string) ([]Invoice, error) {
	var out []Invoice
	err := a.client.GetJSON(ctx, upstream.PathJoin("invoices", "by-contact-code", contactCode), nil, &out)
	return out, err
}

func (a *Adapter) ListPaymentEvents(ctx context.Context, invoiceID string) ([]PaymentEvent, error) {
	var out []PaymentEvent
	err := a.client.GetJSON(ctx, upstream.PathJoin("invoices", invoiceID, "payment-events"), nil, &out)
	return out, err
}
