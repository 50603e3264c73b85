package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	jwttoken "onecore/internal/jwt_token"
	"onecore/internal/platform/health"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/platform/limits"
	"onecore/pkg/platform/middleware/ratelimit"
	"onecore/pkg/platform/middleware/request"
	"onecore/pkg/requestcontext"
)

const testSecret = "router-test-secret"

type readRoutes struct{}

func (readRoutes) Register(r chi.Router) {
	r.Get("/leases/{leaseId}", func(w http.ResponseWriter, r *http.Request) {
		p, _ := requestcontext.GetPrincipal(r.Context())
		httputil.WriteContent(w, http.StatusOK, map[string]string{
			"leaseId": chi.URLParam(r, "leaseId"),
			"actor":   p.Actor(),
		})
	})
}

type writeRoutes struct{}

func (writeRoutes) RegisterWrites(r chi.Router) {
	r.Post("/work-orders", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
}

type auditRoutes struct{}

func (auditRoutes) Register(r chi.Router) {
	r.Get("/audit-events", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteContent(w, http.StatusOK, []string{})
	})
}

type RouterSuite struct {
	suite.Suite
	issuer *jwttoken.Issuer
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.issuer = jwttoken.NewIssuer(testSecret, "", "")
	reg := prometheus.NewRegistry()
	s.router = NewRouter(Deps{
		Logger:         slog.New(slog.DiscardHandler),
		Tokens:         jwttoken.NewValidator(testSecret, "", ""),
		LatencyMetrics: request.NewMetrics(reg),
		Limiter:        ratelimit.New(1000, 1000),
		Health:         health.New("test"),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Reads:          []Routes{readRoutes{}},
		Writes:         []WriteRoutes{writeRoutes{}},
		Audit:          auditRoutes{},
	})
}

func (s *RouterSuite) token(roles ...string) string {
	tok, err := s.issuer.Issue(requestcontext.Principal{Subject: "u-1", Username: "jane", Roles: roles}, time.Now(), time.Hour)
	require.NoError(s.T(), err)
	return "Bearer " + tok
}

func (s *RouterSuite) do(method, target, authz, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealthAndMetricsArePublic() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/live", "", "", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/ready", "", "", "").Code)

	s.do(http.MethodGet, "/leases/L1", s.token(), "", "")
	rec := s.do(http.MethodGet, "/metrics", "", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "endpoint_latency")
}

func (s *RouterSuite) TestReadsRequireBearerToken() {
	rec := s.do(http.MethodGet, "/leases/L1", "", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.JSONEq(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/leases/L1", "Bearer not-a-jwt", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestAuthenticatedReadCarriesPrincipal() {
	rec := s.do(http.MethodGet, "/leases/L1", s.token(), "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"content":{"leaseId":"L1","actor":"jane"}}`, rec.Body.String())
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestWritesRequireJSON() {
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/work-orders", s.token(), "application/json", `{}`).Code)
	s.Equal(http.StatusUnsupportedMediaType, s.do(http.MethodPost, "/work-orders", s.token(), "text/plain", "hi").Code)
}

func (s *RouterSuite) TestWritesCapBodySize() {
	big := `{"caption":"` + strings.Repeat("x", limits.MaxBodySize) + `"}`
	rec := s.do(http.MethodPost, "/work-orders", s.token(), "application/json", big)
	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}

func (s *RouterSuite) TestAuditRequiresAdmin() {
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/audit-events", s.token("staff"), "", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/audit-events", s.token("admin"), "", "").Code)
}

func TestRouterRateLimitsPerClient(t *testing.T) {
	router := NewRouter(Deps{
		Logger:  slog.New(slog.DiscardHandler),
		Tokens:  jwttoken.NewValidator(testSecret, "", ""),
		Limiter: ratelimit.New(0.001, 2),
		Health:  health.New("test"),
	})
	status := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, status("192.0.2.1:1000"))
	require.Equal(t, http.StatusOK, status("192.0.2.1:1001"))
	require.Equal(t, http.StatusTooManyRequests, status("192.0.2.1:1002"))
	require.Equal(t, http.StatusOK, status("192.0.2.2:1000"))
}
