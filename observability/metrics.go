package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kleo"

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	trustMetricsOnce sync.Once
	trustRegistry    *TrustMetrics

	eligibilityMetricsOnce sync.Once
	eligibilityRegistry    *EligibilityMetrics

	walletMetricsOnce sync.Once
	walletRegistry    *WalletMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record HTTP
// module activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "module",
				Name:      "requests_total",
				Help:      "Total API requests segmented by module and method.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "module",
				Name:      "errors_total",
				Help:      "Total API errors segmented by module, method, and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "module",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "module",
				Name:      "throttles_total",
				Help:      "Count of requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a module request. The status code should be
// the HTTP status that was ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	module = normalizeLabel(module)
	method = normalizeLabel(method)
	outcome := "success"
	if status >= 400 {
		outcome = "error"
		m.errors.WithLabelValues(module, method, strconv.Itoa(status)).Inc()
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the module.
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	m.throttles.WithLabelValues(normalizeLabel(module), normalizeLabel(reason)).Inc()
}

// TrustMetrics tracks the trust event history.
type TrustMetrics struct {
	ingested prometheus.Counter
	evicted  prometheus.Counter
	batches  prometheus.Counter
	rejected prometheus.Counter
}

// Trust returns the lazily-initialised trust event metrics.
func Trust() *TrustMetrics {
	trustMetricsOnce.Do(func() {
		trustRegistry = &TrustMetrics{
			ingested: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "trust",
				Name:      "events_ingested_total",
				Help:      "Trust events accepted into the recent history.",
			}),
			evicted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "trust",
				Name:      "events_evicted_total",
				Help:      "Trust events dropped from the recent history by the cap.",
			}),
			batches: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "trust",
				Name:      "batches_total",
				Help:      "Non-empty trust event batches ingested.",
			}),
			rejected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "trust",
				Name:      "batches_rejected_total",
				Help:      "Trust event batches rejected as malformed.",
			}),
		}
		prometheus.MustRegister(trustRegistry.ingested, trustRegistry.evicted, trustRegistry.batches, trustRegistry.rejected)
	})
	return trustRegistry
}

// RecordIngest implements reputation.Recorder.
func (m *TrustMetrics) RecordIngest(accepted, evicted int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.ingested.Add(float64(accepted))
	m.evicted.Add(float64(evicted))
}

// RecordRejected counts a malformed batch.
func (m *TrustMetrics) RecordRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// EligibilityMetrics tracks eligibility evaluations.
type EligibilityMetrics struct {
	checks *prometheus.CounterVec
}

// Eligibility returns the lazily-initialised eligibility metrics.
func Eligibility() *EligibilityMetrics {
	eligibilityMetricsOnce.Do(func() {
		eligibilityRegistry = &EligibilityMetrics{
			checks: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "eligibility",
				Name:      "checks_total",
				Help:      "Eligibility evaluations segmented by tier and outcome.",
			}, []string{"tier", "outcome"}),
		}
		prometheus.MustRegister(eligibilityRegistry.checks)
	})
	return eligibilityRegistry
}

// RecordCheck counts an evaluation. Tier zero is reported as "none".
func (m *EligibilityMetrics) RecordCheck(tier uint8, valid bool) {
	if m == nil {
		return
	}
	label := "none"
	if tier > 0 {
		label = strconv.Itoa(int(tier))
	}
	outcome := "rejected"
	if valid {
		outcome = "eligible"
	}
	m.checks.WithLabelValues(label, outcome).Inc()
}

// WalletMetrics tracks session writes performed by the wallet bridge.
type WalletMetrics struct {
	ticks  prometheus.Counter
	writes *prometheus.CounterVec
}

// Wallet returns the lazily-initialised wallet bridge metrics.
func Wallet() *WalletMetrics {
	walletMetricsOnce.Do(func() {
		walletRegistry = &WalletMetrics{
			ticks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "wallet",
				Name:      "ticks_total",
				Help:      "Wallet observations processed by the bridge.",
			}),
			writes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "wallet",
				Name:      "session_writes_total",
				Help:      "Session store writes performed by the bridge segmented by field.",
			}, []string{"field"}),
		}
		prometheus.MustRegister(walletRegistry.ticks, walletRegistry.writes)
	})
	return walletRegistry
}

// RecordTick counts a tick and the fields it wrote.
func (m *WalletMetrics) RecordTick(accounts, selection, status, errCleared bool) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	for field, wrote := range map[string]bool{
		"accounts":  accounts,
		"selection": selection,
		"status":    status,
		"error":     errCleared,
	} {
		if wrote {
			m.writes.WithLabelValues(field).Inc()
		}
	}
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
