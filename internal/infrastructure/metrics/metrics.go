package metrics

import (
	"net/http"
	"strconv"
	"time"

	"recipe-suggester/internal/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe_suggester"

// Metrics 推薦流程的 Prometheus 指標
type Metrics struct {
	registry     *prometheus.Registry
	tierOutcomes *prometheus.CounterVec
	tierDuration *prometheus.HistogramVec
	suggestions  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// New 建立獨立的 registry，避免與全域 registry 衝突
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: registry,
		tierOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_outcomes_total",
			Help:      "Suggestion tier attempts by outcome and failure reason.",
		}, []string{"tier", "outcome", "reason"}),
		tierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tier_duration_seconds",
			Help:      "Time spent in each suggestion tier.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"tier"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_total",
			Help:      "Suggestion requests by final status.",
		}, []string{"success", "reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
	}
	registry.MustRegister(m.tierOutcomes, m.tierDuration, m.suggestions, m.httpRequests)
	return m
}

// ObserveTier 記錄單一層級的結果與耗時
func (m *Metrics) ObserveTier(tier common.SourceTier, reason common.FailureReason, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if reason != "" {
		outcome = "failure"
	}
	m.tierOutcomes.WithLabelValues(string(tier), outcome, string(reason)).Inc()
	m.tierDuration.WithLabelValues(string(tier)).Observe(duration.Seconds())
}

// ObserveSuggestion 記錄整體推薦結果
func (m *Metrics) ObserveSuggestion(success bool, reason common.FailureReason) {
	if m == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	m.suggestions.WithLabelValues(label, string(reason)).Inc()
}

// ObserveRequest 記錄 HTTP 請求
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry 回傳內部 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 端點
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
