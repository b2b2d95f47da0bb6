// Package metrics exposes Prometheus counters for the WHOIS polling run.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks query attempts, retries, outcomes and skipped candidates.
// Each instance owns its registry so tests can create as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	Attempts      prometheus.Counter
	Retries       *prometheus.CounterVec
	Outcomes      *prometheus.CounterVec
	Skipped       *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	Position      prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "freedomains_whois_attempts_total",
			Help: "Total number of WHOIS transport calls",
		}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freedomains_whois_retries_total",
			Help: "Transient WHOIS failures that triggered a backoff, by reason",
		}, []string{"reason"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freedomains_outcomes_total",
			Help: "Candidates by final outcome (free, registered, gave_up)",
		}, []string{"outcome"}),
		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freedomains_skipped_total",
			Help: "Input lines that never reached WHOIS, by reason",
		}, []string{"reason"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "freedomains_whois_call_duration_seconds",
			Help:    "Duration of single WHOIS transport calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Position: factory.NewGauge(prometheus.GaugeOpts{
			Name: "freedomains_input_position",
			Help: "Number of input lines consumed so far",
		}),
	}
}

// IncAttempt records one transport call.
func (m *Metrics) IncAttempt() {
	m.Attempts.Inc()
}

// IncRetry records a transient failure.
func (m *Metrics) IncRetry(reason string) {
	m.Retries.WithLabelValues(reason).Inc()
}

// IncOutcome records the final outcome of a candidate.
func (m *Metrics) IncOutcome(outcome string) {
	m.Outcomes.WithLabelValues(outcome).Inc()
}

// IncSkipped records a line that was not queried.
func (m *Metrics) IncSkipped(reason string) {
	m.Skipped.WithLabelValues(reason).Inc()
}

// ObserveCall records the duration of a transport call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveCall(start time.Time) {
	m.QueryDuration.Observe(time.Since(start).Seconds())
}

// SetPosition records how many input lines were consumed.
func (m *Metrics) SetPosition(n int) {
	m.Position.Set(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
