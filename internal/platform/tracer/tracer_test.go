package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"onecore/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanUpstreamCall, tracer.String(tracer.AttrService, "leasing"))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Int(tracer.AttrStatus, 404))
	span.AddEvent(tracer.EventCompensated)
	span.End(errors.New("boom"))
}

func TestOTelTracerPropagatesSpanContext(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanDocumentUpload,
		tracer.String(tracer.AttrOwnerID, "c-1"),
		tracer.Bool(tracer.AttrCircuitOpen, false),
		tracer.Duration("elapsed", 1500*time.Millisecond),
	)
	require.NotNil(t, span)
	assert.NotNil(t, trace.SpanFromContext(ctx))
	assert.NotPanics(t, func() { span.End(errors.New("metadata failed")) })
}

func TestHashIdentifier(t *testing.T) {
	assert.Empty(t, tracer.HashIdentifier(""))

	a := tracer.HashIdentifier("P123456")
	assert.Len(t, a, 16)
	assert.Equal(t, a, tracer.HashIdentifier("P123456"))
	assert.NotEqual(t, a, tracer.HashIdentifier("P123457"))
}
