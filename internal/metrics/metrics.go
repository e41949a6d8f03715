// Package metrics exposes Prometheus collectors for the HTTP server and scans.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfscan/backend/internal/domain"
)

const namespace = "shelfscan"

// Scan outcomes
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeNoProducts = "no_products"
	OutcomeFailed     = "failed"
)

// Metrics owns a private Prometheus registry with the HTTP and scan collectors
type Metrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	scansTotal      *prometheus.CounterVec
	categoriesTotal *prometheus.CounterVec
	productsPerScan prometheus.Histogram
}

// New registers all collectors, labelled with service, on a fresh registry
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	scansTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "total",
			Help:      "Total pipeline runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	categoriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "categories_total",
			Help:      "Successful scans by resolved product category.",
		},
		[]string{"service", "category"},
	)
	productsPerScan := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "products",
			Help:      "Distribution of products detected per successful scan.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		scansTotal,
		categoriesTotal,
		productsPerScan,
	)

	return &Metrics{
		registry:        registry,
		service:         service,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		scansTotal:      scansTotal,
		categoriesTotal: categoriesTotal,
		productsPerScan: productsPerScan,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests.
// Paths are labelled by route template so scan ids do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(
			m.service,
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveScan implements usecase.ScanObserver
func (m *Metrics) ObserveScan(category domain.Category, products int, err error) {
	switch {
	case err == nil:
		m.scansTotal.WithLabelValues(m.service, OutcomeSucceeded).Inc()
		if category == "" {
			category = domain.CategoryUnknown
		}
		m.categoriesTotal.WithLabelValues(m.service, category.String()).Inc()
		m.productsPerScan.Observe(float64(products))
	case errors.Is(err, domain.ErrNoProductsDetected):
		m.scansTotal.WithLabelValues(m.service, OutcomeNoProducts).Inc()
	default:
		m.scansTotal.WithLabelValues(m.service, OutcomeFailed).Inc()
	}
}
