// Package tracer is a thin tracing seam over OpenTelemetry so upstream
// adapters can emit spans without importing otel everywhere.
//
// NoopTracer serves tests; OTelTracer is wired in cmd/server.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIdentifier shortens a personal identifier (contact code, national
// number) to a stable digest so traces can be correlated without storing it.
func HashIdentifier(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanUpstreamCall    = "upstream.call"
	SpanDocumentUpload  = "documents.upload"
	SpanTenantAggregate = "tenants.aggregate"
)

// Attribute keys.
const (
	AttrService     = "upstream.service"
	AttrMethod      = "http.method"
	AttrPath        = "http.path"
	AttrStatus      = "http.status_code"
	AttrErrorKind   = "upstream.error_kind"
	AttrCircuitOpen = "circuit.open"
	AttrContactCode = "contact_code_hash"
	AttrOwnerID     = "document.owner_id"
)

// Event names.
const (
	EventCompensated = "documents.compensated"
)
