// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// IntentsTotal counts classified chat turns by intent.
	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_intents_total",
			Help: "Chat turns classified, by intent",
		},
		[]string{"intent"},
	)

	// IntentConfidence tracks classifier confidence. Telemetry only.
	IntentConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialogue_intent_confidence",
			Help:    "Classifier confidence by intent",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
		[]string{"intent"},
	)

	// DraftsTotal counts draft lifecycle transitions.
	DraftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_drafts_total",
			Help: "Draft lifecycle transitions",
		},
		[]string{"action"},
	)

	// DraftStoreEntries tracks drafts held by the in-process store.
	DraftStoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "draft_store_entries",
			Help: "Drafts currently held in memory",
		},
	)

	// ReportCreateTotal counts calls to the report backend.
	ReportCreateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_create_total",
			Help: "Report creation attempts by outcome",
		},
		[]string{"status"},
	)

	// ReportBackendDuration tracks report backend call latency.
	ReportBackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_backend_duration_seconds",
			Help:    "Report backend request duration",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	// LLMRequestsTotal counts generative-text calls.
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Generative text requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// EventsPublishedTotal counts dialogue events sent to JetStream.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_events_published_total",
			Help: "Dialogue events published, by type and outcome",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordIntent records a classification result.
func RecordIntent(intent string, confidence float64) {
	IntentsTotal.WithLabelValues(intent).Inc()
	IntentConfidence.WithLabelValues(intent).Observe(confidence)
}

// RecordDraft records a draft lifecycle transition.
func RecordDraft(action string) {
	DraftsTotal.WithLabelValues(action).Inc()
}

// RecordDrafts records n drafts going through the same transition.
func RecordDrafts(action string, n int) {
	if n > 0 {
		DraftsTotal.WithLabelValues(action).Add(float64(n))
	}
}

// RecordLLM records metrics for a completed LLM call.
func RecordLLM(provider, model, status string, tokensIn, tokensOut int) {
	LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	if status != "success" {
		return
	}
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}
