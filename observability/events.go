package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type eventMetrics struct {
	kinds *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking trust events by kind.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			kinds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "events",
				Name:      "trust_events_total",
				Help:      "Count of trust events segmented by kind.",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(eventRegistry.kinds)
	})
	return eventRegistry
}

// RecordKind increments the counter for the supplied event kind.
func (m *eventMetrics) RecordKind(kind string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(kind)
	if normalized == "" {
		normalized = "Unknown"
	}
	m.kinds.WithLabelValues(normalized).Inc()
}
