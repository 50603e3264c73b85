package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies the gateway's spans to the tracer provider.
const instrumentationName = "onecore/gateway"

// OTelTracer implements Tracer on top of OpenTelemetry, so only this file
// depends on the otel API. Spans go to whatever provider is registered
// globally at startup; with none registered they are dropped.
type OTelTracer struct {
	tracer trace.Tracer
}

// OTelOption configures an OTelTracer.
type OTelOption func(*OTelTracer)

// WithOTelTracer uses t instead of the global provider's tracer. Tests pass
// a noop or recording tracer here.
func WithOTelTracer(t trace.Tracer) OTelOption {
	return func(o *OTelTracer) {
		o.tracer = t
	}
}

// NewOTel builds the tracer used for upstream calls and the upload saga.
func NewOTel(opts ...OTelOption) *OTelTracer {
	t := &OTelTracer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(instrumentationName)
	}
	return t
}

// Start opens a span as a child of any span already in ctx. Upstream calls
// are marked as client spans so backends can pair them with the service's
// server span.
func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	opts := []trace.SpanStartOption{trace.WithAttributes(toOTel(attrs)...)}
	if name == SpanUpstreamCall {
		opts = append(opts, trace.WithSpanKind(trace.SpanKindClient))
	}
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

// End closes the span. A non-nil err is recorded and marks the span failed.
func (s *otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(toOTel(attrs)...)
}

func (s *otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toOTel(attrs)...))
}

// toOTel converts attributes to otel key-values. Values of any type outside
// the otel scalar set are recorded as their fmt.Sprint form.
func toOTel(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		var kv attribute.KeyValue
		switch v := a.Value.(type) {
		case string:
			kv = attribute.String(a.Key, v)
		case bool:
			kv = attribute.Bool(a.Key, v)
		case int:
			kv = attribute.Int(a.Key, v)
		case int64:
			kv = attribute.Int64(a.Key, v)
		case float64:
			kv = attribute.Float64(a.Key, v)
		case []string:
			kv = attribute.StringSlice(a.Key, v)
		default:
			kv = attribute.String(a.Key, fmt.Sprint(v))
		}
		out = append(out, kv)
	}
	return out
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = (*otelSpan)(nil)
)
