package keyportal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"onecore/internal/adapters/keys"
	"onecore/internal/audit"
	"onecore/internal/platform/upstream"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/requestcontext"
)

var requestTime = time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC)

type recordedCall struct {
	method, path, query string
	body                map[string]any
}

type HandlerSuite struct {
	suite.Suite
	mu     sync.Mutex
	calls  []recordedCall
	reply  func(w http.ResponseWriter, r *http.Request)
	events *audit.InMemoryStore
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.calls = nil
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":{}}`)
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		_ = json.NewDecoder(r.Body).Decode(&call.body)
		s.mu.Lock()
		s.calls = append(s.calls, call)
		reply := s.reply
		s.mu.Unlock()
		reply(w, r)
	}))
	s.T().Cleanup(srv.Close)

	s.events = audit.NewInMemoryStore()
	svc := NewService(
		keys.New(upstream.NewClient(upstream.Config{Service: "keys", BaseURL: srv.URL})),
		audit.NewPublisher(s.events),
		nil,
	)
	h := NewHandler(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithPrincipal(r.Context(), requestcontext.Principal{Subject: "u-42", Username: "kari.nyckel"})
			ctx = requestcontext.WithTime(ctx, requestTime)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	h.Register(r)
	h.RegisterWrites(r)
	s.router = r
}

func (s *HandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) setReply(fn func(w http.ResponseWriter, r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = fn
}

func (s *HandlerSuite) recorded() []recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedCall(nil), s.calls...)
}

func (s *HandlerSuite) auditEvents() []audit.Event {
	events, err := s.events.List(context.Background(), audit.Filter{})
	s.Require().NoError(err)
	return events
}

func (s *HandlerSuite) TestListKeySystemsIsPaginated() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[{"id":"ks-1","systemCode":"ASSA-01","name":"Huvudsystem","type":"MECHANICAL"}],"_meta":{"totalRecords":41}}`)
	})

	rec := s.do(http.MethodGet, "/key-systems?q=assa&page=2&limit=20", "")

	s.Require().Equal(http.StatusOK, rec.Code)
	var body struct {
		Content []keys.KeySystem `json:"content"`
		Meta    httputil.Meta    `json:"_meta"`
		Links   []httputil.Link  `json:"_links"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(httputil.Meta{TotalRecords: 41, Page: 2, Limit: 20, Count: 1}, body.Meta)
	s.Len(body.Links, 3, "self, next and prev")
	s.Require().Len(s.recorded(), 1)
	s.Equal("limit=20&page=2&q=assa", s.recorded()[0].query)
}

func (s *HandlerSuite) TestListKeysRejectsOversizedLimit() {
	rec := s.do(http.MethodGet, "/keys?limit=500", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.recorded())
}

func (s *HandlerSuite) TestCreateKeyIsAudited() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"content":{"id":"key-9","keyName":"Lgh 1101","keyType":"LGH"}}`)
	})

	rec := s.do(http.MethodPost, "/keys", `{"keyName":"Lgh 1101","keyType":"LGH","rentalObjectCode":"705-011-03-0102"}`)

	s.Require().Equal(http.StatusCreated, rec.Code)
	events := s.auditEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionKeyCreated, events[0].Action)
	s.Equal("key-9", events[0].ResourceID)
	s.Equal("kari.nyckel", events[0].Actor)
	s.Equal("705-011-03-0102", events[0].Details["rentalObjectCode"])
}

func (s *HandlerSuite) TestCreateKeyValidation() {
	rec := s.do(http.MethodPost, "/keys", `{"keyName":"Lgh 1101","keyType":"SAFE"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "keyType must be one of")
	s.Empty(s.recorded())
	s.Empty(s.auditEvents())
}

func (s *HandlerSuite) TestPatchKeySystemSendsOnlySetFields() {
	rec := s.do(http.MethodPatch, "/key-systems/ks-1", `{"isActive":false}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.recorded(), 1)
	s.Equal(http.MethodPatch, s.recorded()[0].method)
	s.Equal(map[string]any{"isActive": false}, s.recorded()[0].body)
}

func (s *HandlerSuite) TestDeleteConflictIsAuditedAsFailure() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"Key system has keys"}`)
	})

	rec := s.do(http.MethodDelete, "/key-systems/ks-1", "")

	s.Equal(http.StatusConflict, rec.Code)
	events := s.auditEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.OutcomeFailure, events[0].Outcome)
	s.Equal("conflict", events[0].Details["error_kind"])
}

func (s *HandlerSuite) TestDeleteKey() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := s.do(http.MethodDelete, "/keys/key-9", "")

	s.Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.String())
	s.Equal(audit.ActionKeyDeleted, s.auditEvents()[0].Action)
}

func (s *HandlerSuite) TestListKeyLoansNeedsFilter() {
	rec := s.do(http.MethodGet, "/key-loans", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.recorded())

	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	})
	rec = s.do(http.MethodGet, "/key-loans?contact=P123456", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"content":[]}`, rec.Body.String())
}

func (s *HandlerSuite) TestCreateKeyLoanDefaultsCreatedBy() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":{"id":"loan-1","keys":["key-9"],"contact":"P123456"}}`)
	})

	rec := s.do(http.MethodPost, "/key-loans", `{"keys":["key-9"],"contact":"P123456"}`)

	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal("kari.nyckel", s.recorded()[0].body["createdBy"])
	s.Equal("loan-1", s.auditEvents()[0].ResourceID)
}

func (s *HandlerSuite) TestReturnKeyLoanStampsRequestTime() {
	s.setReply(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"content":{"id":"loan-1","keys":["key-9"],"contact":"P123456","returnedAt":"2025-05-14T09:30:00Z"}}`)
	})

	rec := s.do(http.MethodPost, "/key-loans/loan-1/return", "")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.recorded(), 1)
	s.Equal("/key-loans/loan-1/return", s.recorded()[0].path)
	s.Equal(requestTime.Format(time.RFC3339), s.recorded()[0].body["returnedAt"])
	s.Equal("kari.nyckel", s.recorded()[0].body["updatedBy"])
	events := s.auditEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionKeyLoanReturned, events[0].Action)
	s.Equal(requestTime, events[0].OccurredAt)
}
