package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"onecore/internal/platform/metrics"
	"onecore/pkg/platform/middleware/metadata"
	"onecore/pkg/requestcontext"
)

const deliveryTimeout = 5 * time.Second

// Publisher writes events to the store and then to the sink. Delivery
// failures are logged and counted; they never reach the caller.
type Publisher struct {
	store   Store
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  chan Event
	wg      sync.WaitGroup
	async   bool

	// closeMu guards closed; Emit holds it shared while sending on events.
	closeMu sync.RWMutex
	closed  bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer enables background delivery with the given buffer size.
// Events are dropped with a warning when the buffer is full.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		if sink != nil {
			p.sink = sink
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		sink:   NoopSink{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.deliver(context.Background(), event)
	}
}

// Close stops the async worker after draining queued events. Events
// emitted afterwards are delivered inline. Close is safe to call twice.
func (p *Publisher) Close() {
	if !p.async {
		return
	}
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// Record builds an event from the request context and emits it.
func (p *Publisher) Record(ctx context.Context, action Action, resource, resourceID string, outcome Outcome, details map[string]string) {
	p.Emit(ctx, Event{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Outcome:    outcome,
		Details:    details,
	})
}

// Emit fills request-scoped fields left empty on event and delivers it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	event = enrich(ctx, event)
	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"actor", event.Actor,
		"resource", event.Resource,
		"resource_id", event.ResourceID,
		"outcome", event.Outcome,
		"request_id", event.RequestID,
	)
	if p.async && p.enqueue(ctx, event) {
		return
	}
	p.deliver(context.WithoutCancel(ctx), event)
}

// enqueue hands event to the async worker, or drops it when the buffer is
// full. It returns false once the publisher is closed.
func (p *Publisher) enqueue(ctx context.Context, event Event) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.events <- event:
	default:
		p.metrics.IncAuditPublishFailure("buffer")
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
	return true
}

func (p *Publisher) deliver(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncAuditPublishFailure("store")
		p.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"event_id", event.ID,
		)
	}
	if err := p.sink.Publish(ctx, event); err != nil {
		p.metrics.IncAuditPublishFailure(p.sink.Name())
		p.logger.ErrorContext(ctx, "failed to publish audit event",
			"error", err,
			"sink", p.sink.Name(),
			"action", event.Action,
			"event_id", event.ID,
		)
	}
}

func (p *Publisher) List(ctx context.Context, filter Filter) ([]Event, error) {
	return p.store.List(ctx, filter)
}

func enrich(ctx context.Context, e Event) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = requestcontext.Now(ctx)
	}
	if e.Actor == "" {
		if principal, ok := requestcontext.GetPrincipal(ctx); ok {
			e.Actor = principal.Actor()
		} else {
			e.Actor = "anonymous"
		}
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeSuccess
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = metadata.DescribeUserAgent(requestcontext.UserAgent(ctx))
	}
	return e
}
