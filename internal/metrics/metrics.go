// Package metrics provides Prometheus metrics for gridclip.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

const namespace = "gridclip"

// Collector holds all Prometheus metrics for gridclip.
type Collector struct {
	// Transfer metrics
	TransfersTotal    *prometheus.CounterVec
	TransferDuration  *prometheus.HistogramVec
	TransfersRejected *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Schema metrics
	SchemaReloads      prometheus.Counter
	SchemaReloadErrors prometheus.Counter
	SchemaLastReload   prometheus.Gauge
	TablesLoaded       prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		TransfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of copy, cut and paste operations",
			},
			[]string{"op", "field_type", "outcome"},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Transfer duration in seconds, including clipboard and store I/O",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
		TransfersRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_rejected_total",
				Help:      "Transfers refused before running, by reason",
			},
			[]string{"reason"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		SchemaReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_reloads_total",
				Help:      "Total number of successful schema reloads",
			},
		),
		SchemaReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_reload_errors_total",
				Help:      "Total number of failed schema reloads",
			},
		),
		SchemaLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "schema_last_reload_timestamp",
				Help:      "Unix timestamp of the last successful schema reload",
			},
		),
		TablesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tables_loaded",
				Help:      "Number of table definitions currently registered",
			},
		),
	}
}

// ObserveTransfer implements transfer.Observer.
func (c *Collector) ObserveTransfer(op transfer.Op, fieldType fields.FieldType, outcome string, elapsed time.Duration) {
	ft := string(fieldType)
	if ft == "" {
		ft = "none"
	}
	c.TransfersTotal.WithLabelValues(string(op), ft, outcome).Inc()
	c.TransferDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

// Rejected counts a transfer refused before reaching the controller,
// e.g. by the concurrency limiter.
func (c *Collector) Rejected(reason string) {
	c.TransfersRejected.WithLabelValues(reason).Inc()
}

// SchemaReloaded records a reload attempt.
func (c *Collector) SchemaReloaded(tables int, err error) {
	if err != nil {
		c.SchemaReloadErrors.Inc()
		return
	}
	c.SchemaReloads.Inc()
	c.SchemaLastReload.SetToCurrentTime()
	c.TablesLoaded.Set(float64(tables))
}

// ObserveRequest records one HTTP request. route is the matched route
// pattern, never the raw path.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.RequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
