package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records payment webhook processing outcomes.
type WebhookMetrics struct {
	events     *prometheus.CounterVec
	decrements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Processed payment webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	decrements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_decrement_failures_total",
		Help: "Stock decrements that could not be applied, by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_duration_seconds",
		Help:    "Duration of webhook event handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(events, decrements, duration)
	return &WebhookMetrics{
		events:     events,
		decrements: decrements,
		duration:   duration,
	}
}

// IncEvent increments the event counter for the given type and outcome.
func (m *WebhookMetrics) IncEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncDecrementFailure increments the decrement failure counter.
func (m *WebhookMetrics) IncDecrementFailure(reason string) {
	if m == nil || m.decrements == nil {
		return
	}
	m.decrements.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveDuration records handling time for the named event type.
func (m *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
