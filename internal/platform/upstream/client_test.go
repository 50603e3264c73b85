package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"onecore/internal/platform/metrics"
	"onecore/pkg/platform/circuit"
	"onecore/pkg/requestcontext"
)

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	calls   atomic.Int32
	metrics *metrics.Metrics
	client  *Client
}

func (s *ClientSuite) SetupTest() {
	s.calls.Store(0)
	s.handler = func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.handler(w, r)
	}))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.client = NewClient(Config{
		Service: "leasing",
		BaseURL: s.server.URL + "/",
		APIKey:  "k-1",
		Timeout: time.Second,
		Breaker: circuit.New("leasing", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)),
		Metrics: s.metrics,
	})
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) TestGetJSONUnwrapsContent() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/leases/L-1", r.URL.Path)
		s.Equal("true", r.URL.Query().Get("includeContacts"))
		s.Equal("k-1", r.Header.Get("X-API-Key"))
		s.Equal("req-9", r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"content":{"leaseId":"L-1","status":"Current"}}`)
	}
	var out struct {
		LeaseID string `json:"leaseId"`
	}
	ctx := requestcontext.WithRequestID(context.Background(), "req-9")

	err := s.client.GetJSON(ctx, PathJoin("leases", "L-1"), url.Values{"includeContacts": {"true"}}, &out)

	s.Require().NoError(err)
	s.Equal("L-1", out.LeaseID)
	s.InDelta(1, testutil.ToFloat64(s.metrics.UpstreamRequests.WithLabelValues("leasing", "ok")), 0)
}

func (s *ClientSuite) TestGetJSONWithoutEnvelope() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1},{"id":2}]`)
	}
	var out []map[string]int

	s.Require().NoError(s.client.GetJSON(context.Background(), "/things", nil, &out))
	s.Len(out, 2)
}

func (s *ClientSuite) TestGetPageReadsTotal() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[{"id":"a"}],"_meta":{"totalRecords":41}}`)
	}
	var out []map[string]string

	total, err := s.client.GetPage(context.Background(), "/keys", nil, &out)

	s.Require().NoError(err)
	s.Equal(41, total)
	s.Len(out, 1)
}

func (s *ClientSuite) TestStatusMapsToKind() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Lease not found"}`)
	}

	err := s.client.GetJSON(context.Background(), "/leases/x", nil, &struct{}{})

	var upErr *Error
	s.Require().ErrorAs(err, &upErr)
	s.Equal(KindNotFound, upErr.Kind)
	s.Equal(http.StatusNotFound, upErr.Status)
	s.Equal("Lease not found", upErr.Message)
}

func (s *ClientSuite) TestUndecodableBodyIsUnknown() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}

	err := s.client.GetJSON(context.Background(), "/leases/x", nil, &struct{}{})
	s.Equal(KindUnknown, KindOf(err))
}

func (s *ClientSuite) TestOpenCircuitFailsFast() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	for range 2 {
		_, err := s.client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
		s.Equal(KindUnknown, KindOf(err))
	}
	s.Require().Equal(int32(2), s.calls.Load())

	_, err := s.client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})

	var upErr *Error
	s.Require().ErrorAs(err, &upErr)
	s.Equal("circuit open", upErr.Message)
	s.Equal(int32(2), s.calls.Load(), "open circuit must not reach the upstream")
	s.InDelta(1, testutil.ToFloat64(s.metrics.CircuitOpen.WithLabelValues("leasing")), 0)
}

func (s *ClientSuite) TestClientErrorsDoNotTripBreaker() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}
	for range 5 {
		_, err := s.client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
		s.Equal(KindBadRequest, KindOf(err))
	}
	s.Equal(int32(5), s.calls.Load())
}

func (s *ClientSuite) TestSendJSON() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		s.JSONEq(`{"name":"Kök"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"content":{"id":"c-1"}}`)
	}
	var out struct{ ID string }

	err := s.client.SendJSON(context.Background(), http.MethodPost, "/components", map[string]string{"name": "Kök"}, &out)

	s.Require().NoError(err)
	s.Equal("c-1", out.ID)
}

func (s *ClientSuite) TestHealth() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}
	s.NoError(s.client.Health(context.Background()))

	s.handler = func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }
	s.ErrorContains(s.client.Health(context.Background()), "unhealthy")
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestTransportFailureIsUnknown(t *testing.T) {
	c := NewClient(Config{Service: "economy", BaseURL: "http://economy", HTTPClient: failingDoer{err: context.DeadlineExceeded}})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/invoices"})

	var upErr *Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, KindUnknown, upErr.Kind)
	assert.Equal(t, "request timeout", upErr.Message)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPathJoinEscapes(t *testing.T) {
	assert.Equal(t, "/contacts/P%2F12", PathJoin("contacts", "P/12"))
	assert.Equal(t, "/files/a%20b.pdf/url", PathJoin("files", "a b.pdf", "url"))
}
