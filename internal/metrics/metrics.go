// Package metrics exposes bot counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Completion outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeProviderError = "provider_error"
	OutcomeError         = "error"
)

// Recorder receives bot events.
type Recorder interface {
	IncUpdates(kind string)
	IncDenied(surface string)
	ObserveCompletion(model, outcome string, duration time.Duration)
	AddTokens(model string, tokens int)
	IncStoreFailures(op string)
}

// Metrics is the Prometheus-backed Recorder.
type Metrics struct {
	updatesTotal       *prometheus.CounterVec
	deniedTotal        *prometheus.CounterVec
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	tokensTotal        *prometheus.CounterVec
	storeFailures      *prometheus.CounterVec
}

func (m *Metrics) IncUpdates(kind string) {
	m.updatesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDenied(surface string) {
	m.deniedTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) ObserveCompletion(model, outcome string, duration time.Duration) {
	m.completionsTotal.WithLabelValues(model, outcome).Inc()
	m.completionDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func (m *Metrics) AddTokens(model string, tokens int) {
	if tokens > 0 {
		m.tokensTotal.WithLabelValues(model).Add(float64(tokens))
	}
}

func (m *Metrics) IncStoreFailures(op string) {
	m.storeFailures.WithLabelValues(op).Inc()
}

// New returns a Recorder registered with reg, or a no-op one when disabled.
func New(enabled bool, reg prometheus.Registerer) Recorder {
	if !enabled {
		return Noop()
	}

	f := promauto.With(reg)
	return &Metrics{
		updatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "askbot_updates_total",
			Help: "Telegram updates received, by kind",
		}, []string{"kind"}),

		deniedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "askbot_denied_total",
			Help: "Requests refused by the authorization policy, by surface",
		}, []string{"surface"}),

		completionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "askbot_completions_total",
			Help: "Completion API calls, by model and outcome",
		}, []string{"model", "outcome"}),

		completionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "askbot_completion_duration_seconds",
			Help:    "Completion API latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"model"}),

		tokensTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "askbot_tokens_total",
			Help: "Tokens recorded in the usage ledger, by model",
		}, []string{"model"}),

		storeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "askbot_store_failures_total",
			Help: "Failed state mutations, by operation",
		}, []string{"op"}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Noop returns a Recorder that discards everything.
func Noop() Recorder {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) IncUpdates(_ string)                            {}
func (noopMetrics) IncDenied(_ string)                             {}
func (noopMetrics) ObserveCompletion(_, _ string, _ time.Duration) {}
func (noopMetrics) AddTokens(_ string, _ int)                      {}
func (noopMetrics) IncStoreFailures(_ string)                      {}
