package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's domain metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	UpstreamRequests      *prometheus.CounterVec
	UpstreamLatency       *prometheus.HistogramVec
	CircuitOpen           *prometheus.GaugeVec
	CacheLookups          *prometheus.CounterVec
	CacheStaleWrites      prometheus.Counter
	DocumentsUploaded     *prometheus.CounterVec
	UploadCompensations   *prometheus.CounterVec
	AuditPublishFailures  *prometheus.CounterVec
	TenantPartialResponse prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil registerer
// leaves them unregistered, which keeps parallel tests independent.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onecore_upstream_requests_total",
			Help: "Upstream calls by service and outcome kind",
		}, []string{"service", "outcome"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onecore_upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		CircuitOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onecore_upstream_circuit_open",
			Help: "1 while the circuit breaker for a service is open",
		}, []string{"service"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onecore_cache_lookups_total",
			Help: "Read-through cache lookups by result (hit|miss|error)",
		}, []string{"result"}),
		CacheStaleWrites: f.NewCounter(prometheus.CounterOpts{
			Name: "onecore_cache_stale_writes_skipped_total",
			Help: "Cache fills dropped because the key was invalidated mid-flight",
		}),
		DocumentsUploaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onecore_documents_uploaded_total",
			Help: "Completed document uploads by owner type",
		}, []string{"owner"}),
		UploadCompensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onecore_document_upload_compensations_total",
			Help: "Blob deletions after failed metadata creation, by result",
		}, []string{"result"}),
		AuditPublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onecore_audit_publish_failures_total",
			Help: "Audit events that could not be delivered, by destination",
		}, []string{"destination"}),
		TenantPartialResponse: f.NewCounter(prometheus.CounterOpts{
			Name: "onecore_tenant_partial_responses_total",
			Help: "Tenant aggregates served without invoices",
		}),
	}
}

func (m *Metrics) ObserveUpstream(service, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(service, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(service).Observe(seconds)
}

func (m *Metrics) SetCircuitOpen(service string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.CircuitOpen.WithLabelValues(service).Set(v)
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCacheStaleWrite() {
	if m == nil {
		return
	}
	m.CacheStaleWrites.Inc()
}

func (m *Metrics) IncDocumentsUploaded(owner string) {
	if m == nil {
		return
	}
	m.DocumentsUploaded.WithLabelValues(owner).Inc()
}

// IncUploadCompensation records a compensation attempt; result is "deleted" or "failed".
func (m *Metrics) IncUploadCompensation(result string) {
	if m == nil {
		return
	}
	m.UploadCompensations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncAuditPublishFailure(destination string) {
	if m == nil {
		return
	}
	m.AuditPublishFailures.WithLabelValues(destination).Inc()
}

func (m *Metrics) IncTenantPartialResponse() {
	if m == nil {
		return
	}
	m.TenantPartialResponse.Inc()
}
