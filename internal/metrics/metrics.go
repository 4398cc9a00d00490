// Package metrics exposes Prometheus instruments for Data API traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeNetwork   = "network"
	OutcomeMalformed = "malformed"
	OutcomeAPI       = "api"
	OutcomeNotFound  = "not_found"
	OutcomeConfig    = "config"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the metrics in reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Recorder groups the client's instruments. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Refreshes       *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		// Requests counts Data API calls by operation and outcome.
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fmdata_requests_total",
				Help: "Total Data API requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fmdata_request_duration_seconds",
				Help:    "Data API request duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fmdata_session_refreshes_total",
				Help: "Session token refreshes by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.Requests, r.RequestDuration, r.Refreshes)
	}
	return r
}

func (r *Recorder) ObserveRequest(operation, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.Requests.WithLabelValues(operation, outcome).Inc()
	r.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (r *Recorder) ObserveRefresh(outcome string) {
	if r == nil {
		return
	}
	r.Refreshes.WithLabelValues(outcome).Inc()
}
