package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"onecore/internal/platform/metrics"
	"onecore/pkg/requestcontext"
)

type failingStore struct{ InMemoryStore }

func (*failingStore) Append(context.Context, Event) error { return errors.New("db down") }

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) Name() string { return "kafka" }

type PublisherSuite struct {
	suite.Suite
	store   *InMemoryStore
	sink    *recordingSink
	metrics *metrics.Metrics
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.sink = &recordingSink{}
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *PublisherSuite) requestContext() context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.7",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{Subject: "u-1", Username: "anna"})
	return requestcontext.WithTime(ctx, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

func (s *PublisherSuite) TestRecordEnrichesFromContext() {
	p := NewPublisher(s.store, WithSink(s.sink))

	p.Record(s.requestContext(), ActionKeyCreated, ResourceKey, "k-1", "", nil)

	events, err := s.store.List(context.Background(), Filter{})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	e := events[0]
	s.NotEqual(uuid.Nil, e.ID)
	s.Equal("anna", e.Actor)
	s.Equal("req-1", e.RequestID)
	s.Equal("10.0.0.7", e.ClientIP)
	s.Contains(e.UserAgent, "Chrome")
	s.Contains(e.UserAgent, "Windows")
	s.Equal(OutcomeSuccess, e.Outcome)
	s.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), e.OccurredAt)
	s.Len(s.sink.events, 1)
}

func (s *PublisherSuite) TestAnonymousActorWithoutPrincipal() {
	p := NewPublisher(s.store)

	p.Record(context.Background(), ActionKeyDeleted, ResourceKey, "k-1", OutcomeSuccess, nil)

	events, _ := s.store.List(context.Background(), Filter{})
	s.Equal("anonymous", events[0].Actor)
}

func (s *PublisherSuite) TestStoreFailureIsCountedAndSinkStillCalled() {
	p := NewPublisher(&failingStore{}, WithSink(s.sink), WithMetrics(s.metrics))

	s.NotPanics(func() {
		p.Record(s.requestContext(), ActionKeyCreated, ResourceKey, "k-1", OutcomeSuccess, nil)
	})

	s.Len(s.sink.events, 1)
	s.InDelta(1, testutil.ToFloat64(s.metrics.AuditPublishFailures.WithLabelValues("store")), 0)
}

func (s *PublisherSuite) TestSinkFailureIsCounted() {
	s.sink.err = errors.New("broker unreachable")
	p := NewPublisher(s.store, WithSink(s.sink), WithMetrics(s.metrics))

	p.Record(s.requestContext(), ActionKeyCreated, ResourceKey, "k-1", OutcomeSuccess, nil)

	events, _ := s.store.List(context.Background(), Filter{})
	s.Len(events, 1)
	s.InDelta(1, testutil.ToFloat64(s.metrics.AuditPublishFailures.WithLabelValues("kafka")), 0)
}

func (s *PublisherSuite) TestAsyncDrainsOnClose() {
	p := NewPublisher(s.store, WithAsyncBuffer(16))
	for range 10 {
		p.Record(s.requestContext(), ActionKeyUpdated, ResourceKey, "k-1", OutcomeSuccess, nil)
	}

	p.Close()

	events, _ := s.store.List(context.Background(), Filter{Limit: 100})
	s.Len(events, 10)
}

func (s *PublisherSuite) TestAsyncEmitAfterCloseDeliversInline() {
	p := NewPublisher(s.store, WithAsyncBuffer(4))
	p.Close()

	s.NotPanics(func() {
		p.Record(s.requestContext(), ActionKeyDeleted, ResourceKey, "k-2", OutcomeSuccess, nil)
		p.Close()
	})

	events, _ := s.store.List(context.Background(), Filter{})
	s.Require().Len(events, 1)
	s.Equal(ActionKeyDeleted, events[0].Action)
}

func (s *PublisherSuite) TestAsyncCloseWhileEmitting() {
	p := NewPublisher(s.store, WithAsyncBuffer(1024))
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				p.Record(s.requestContext(), ActionKeyUpdated, ResourceKey, "k-1", OutcomeSuccess, nil)
			}
		})
	}

	s.NotPanics(p.Close)
	wg.Wait()

	events, _ := s.store.List(context.Background(), Filter{Limit: 1000})
	s.Len(events, 400, "every event is queued before close or delivered inline after it")
}
