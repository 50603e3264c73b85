package leases

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"onecore/internal/adapters/leasing"
	"onecore/internal/platform/upstream"
)

type HandlerSuite struct {
	suite.Suite
	mu       sync.Mutex
	upstream http.HandlerFunc
	lastURL  string
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.reply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lastURL = r.URL.String()
		reply := s.upstream
		s.mu.Unlock()
		reply(w, r)
	}))
	s.T().Cleanup(srv.Close)

	client := upstream.NewClient(upstream.Config{Service: "leasing", BaseURL: srv.URL})
	r := chi.NewRouter()
	NewHandler(leasing.New(client), slog.New(slog.DiscardHandler)).Register(r)
	s.router = r
}

func (s *HandlerSuite) reply(fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstream = fn
}

func (s *HandlerSuite) called() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *HandlerSuite) TestGetLeaseNotFound() {
	s.reply(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"reason":"Lease not found"}`)
	})

	rec := s.get("/leases/L-404")

	s.Equal(http.StatusNotFound, rec.Code)
	s.JSONEq(`{"error":"not_found","error_description":"Lease not found"}`, rec.Body.String())
}

func (s *HandlerSuite) TestUpstreamStatusesMapToRouteStatuses() {
	cases := map[int]int{
		http.StatusBadRequest:          http.StatusBadRequest,
		http.StatusConflict:            http.StatusConflict,
		http.StatusForbidden:           http.StatusForbidden,
		http.StatusInternalServerError: http.StatusInternalServerError,
		http.StatusTeapot:              http.StatusInternalServerError,
	}
	for upstreamStatus, want := range cases {
		s.reply(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(upstreamStatus)
		})
		rec := s.get("/contacts/P123456")
		s.Equal(want, rec.Code, "upstream %d", upstreamStatus)
	}
}

func (s *HandlerSuite) TestGetLeaseForwardsIncludeContacts() {
	s.reply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":{"leaseId":"L-1","status":"Current"}}`)
	})

	rec := s.get("/leases/L-1?includeContacts=true")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"leaseId":"L-1"`)
	s.Equal("/leases/L-1?includeContacts=true", s.called())
}

func (s *HandlerSuite) TestLeaseFlagsMustBeBooleans() {
	rec := s.get("/leases/by-contact-code/P123456?includeTerminatedLeases=maybe")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "includeTerminatedLeases")
}

func (s *HandlerSuite) TestLeasesByRentalPropertyForwardsFilter() {
	rec := s.get("/leases/by-rental-property-id/705-011-03-0102?includeUpcomingLeases=true")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"content":[]}`, rec.Body.String())
	s.Equal("/leases/by-rental-property-id/705-011-03-0102?includeUpcomingLeases=true", s.called())
}

func (s *HandlerSuite) TestSearchContactsRequiresThreeCharacters() {
	for _, q := range []string{"", "ab", "  ab  ", "åä"} {
		rec := s.get("/contacts/search?q=" + q)
		s.Equal(http.StatusBadRequest, rec.Code, "q=%q", q)
	}
	s.Empty(s.called(), "short queries never reach leasing")

	s.reply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[{"contactCode":"P123456","fullName":"Anna Andersson"}]}`)
	})
	rec := s.get("/contacts/search?q=and")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Anna Andersson")
}

func (s *HandlerSuite) TestRentalBlocks() {
	s.reply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[{"id":"b1","rentalPropertyId":"R1","blockReason":"Renovering"}]}`)
	})

	rec := s.get("/rental-blocks/by-rental-id/R1")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Renovering")
	s.Equal("/rental-properties/R1/blocks", s.called())
}
