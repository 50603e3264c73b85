package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"onecore/pkg/platform/limits"
	"onecore/pkg/platform/middleware/auth"
	"onecore/pkg/platform/middleware/metadata"
	"onecore/pkg/platform/middleware/ratelimit"
	"onecore/pkg/platform/middleware/request"
)

const (
	defaultRequestTimeout = 30 * time.Second
	adminRole             = "admin"
)

// Routes mounts read routes, and routes that manage their own body rules.
type Routes interface {
	Register(r chi.Router)
}

// WriteRoutes mounts JSON mutation routes.
type WriteRoutes interface {
	RegisterWrites(r chi.Router)
}

// Deps is everything the router wires together. Nil optional fields are
// skipped.
type Deps struct {
	Logger         *slog.Logger
	Tokens         auth.TokenValidator
	LatencyMetrics *request.Metrics
	Limiter        *ratelimit.Limiter
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration

	// Public routes, outside authentication.
	Health  Routes
	Metrics http.Handler

	// Authenticated routes.
	Reads   []Routes
	Writes  []WriteRoutes
	Uploads Routes
	Audit   Routes
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: d.TrustedProxies}).Handler)
	r.Use(request.Logger(d.Logger))
	if d.LatencyMetrics != nil {
		r.Use(request.LatencyMiddleware(d.LatencyMetrics))
	}
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}
	r.Use(request.Timeout(d.RequestTimeout))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.Tokens, d.Logger))

		for _, routes := range d.Reads {
			routes.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(request.ContentTypeJSON)
			r.Use(request.BodyLimit(limits.MaxBodySize))
			for _, routes := range d.Writes {
				routes.RegisterWrites(r)
			}
		})

		if d.Uploads != nil {
			d.Uploads.Register(r)
		}

		if d.Audit != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(adminRole, d.Logger))
				d.Audit.Register(r)
			})
		}
	})

	return r
}
