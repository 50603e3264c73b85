package request

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the per-route view of gateway traffic.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

// NewMetrics registers with reg unless it is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EndpointLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onecore_endpoint_latency_seconds",
			Help:    "Latency of gateway endpoints by route pattern and status class",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "endpoint", "status"}),
	}
}

// ObserveEndpoint records one request; status is reduced to its class (2xx, 4xx...).
func (m *Metrics) ObserveEndpoint(method, endpoint string, status int, elapsed time.Duration) {
	m.EndpointLatency.WithLabelValues(method, endpoint, statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
