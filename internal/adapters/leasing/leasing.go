// Package leasing adapts the leasing microservice: leases, contacts and
// rental blocks.
package leasing

import (
	"context"
	"net/url"
	"strconv"

	"onecore/internal/platform/upstream"
)

type Adapter struct {
	client *upstream.Client
}

func New(client *upstream.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) GetLease(ctx context.Context, leaseID string, includeContacts bool) (Lease, error) {
	var lease Lease
	q := url.Values{"includeContacts": {strconv.FormatBool(includeContacts)}}
	err := a.client.GetJSON(ctx, upstream.PathJoin("leases", leaseID), q, &lease)
	return lease, err
}

func (a *Adapter) ListLeasesByRentalPropertyID(ctx context.Context, rentalPropertyID string, f LeaseFilter) ([]Lease, error) {
	var leases []Lease
	err := a.client.GetJSON(ctx, upstream.PathJoin("leases", "by-rental-property-id", rentalPropertyID), f.query(), &leases)
	return leases, err
}

func (a *Adapter) ListLeasesByContactCode(ctx context.Context, contactCode string, f LeaseFilter) ([]Lease, error) {
	var leases []Lease
	err := a.client.GetJSON(ctx, upstream.PathJoin("leases", "by-contact-code", contactCode), f.query(), &leases)
	return leases, err
}

func (a *Adapter) GetContact(ctx context.Context, contactCode string) (Contact, error) {
	var contact Contact
	err := a.client.GetJSON(ctx, upstream.PathJoin("contacts", contactCode), nil, &contact)
	return contact, err
}

func (a *Adapter) SearchContacts(ctx context.Context, q string) ([]ContactSummary, error) {
	var hits []ContactSummary
	err := a.client.GetJSON(ctx, "/contacts/search", url.Values{"q": {q}}, &hits)
	return hits, err
}

func (a *Adapter) ListRentalBlocks(ctx context.Context, rentalPropertyID string) ([]RentalBlock, error) {
	var blocks []RentalBlock
	err := a.client.GetJSON(ctx, upstream.PathJoin("rental-properties", rentalPropertyID, "blocks"), nil, &blocks)
	return blocks, err
}

func (f LeaseFilter) query() url.Values {
	q := url.Values{}
	if f.IncludeUpcomingLeases {
		q.Set("includeUpcomingLeases", "true")
	}
	if f.IncludeTerminatedLeases {
		q.Set("includeTerminatedLeases", "true")
	}
	if f.IncludeContacts {
		q.Set("includeContacts", "true")
	}
	return q
}
