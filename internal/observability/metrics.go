package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// notifier relay.
type Metrics struct {
	EventsReceived  prometheus.Counter
	UnknownCommands prometheus.Counter
	DecodeErrors    prometheus.Counter
	RulesMatched    prometheus.Counter

	// Formatting metrics, labeled by formatter name.
	BulletinsSent       *prometheus.CounterVec // label: formatter
	BulletinsSuppressed *prometheus.CounterVec // label: formatter

	// Webhook delivery metrics.
	Deliveries       prometheus.Counter
	DeliveryErrors   prometheus.Counter
	DeliveryDuration prometheus.Histogram

	// Connection lifecycle metrics.
	Connected  prometheus.Gauge
	Reconnects prometheus.Counter
}

// NewMetrics creates and registers all relay metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "events_received_total",
			Help:      "Total messages read from the watcher socket.",
		}),
		UnknownCommands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "unknown_commands_total",
			Help:      "Total messages with an unrecognized command, dropped.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "decode_errors_total",
			Help:      "Total malformed socket messages or payloads, dropped.",
		}),
		RulesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "rules_matched_total",
			Help:      "Total watcher-rule matches for incoming file updates.",
		}),
		BulletinsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "bulletins_sent_total",
			Help:      "Bulletins handed to the notifier, by formatter.",
		}, []string{"formatter"}),
		BulletinsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "bulletins_suppressed_total",
			Help:      "Formatter runs that produced no bulletin, by formatter.",
		}, []string{"formatter"}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "deliveries_total",
			Help:      "Total webhook POST attempts.",
		}),
		DeliveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "delivery_errors_total",
			Help:      "Total failed webhook POSTs (best-effort, no retry).",
		}),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_notify",
			Name:      "delivery_duration_seconds",
			Help:      "Duration of a single webhook POST.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_notify",
			Name:      "connected",
			Help:      "1 while the watcher socket is connected, 0 otherwise.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_notify",
			Name:      "reconnects_total",
			Help:      "Total reconnect attempts after a lost connection.",
		}),
	}

	prometheus.MustRegister(
		m.EventsReceived,
		m.UnknownCommands,
		m.DecodeErrors,
		m.RulesMatched,
		m.BulletinsSent,
		m.BulletinsSuppressed,
		m.Deliveries,
		m.DeliveryErrors,
		m.DeliveryDuration,
		m.Connected,
		m.Reconnects,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EventsReceived:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "events_received_total"}),
		UnknownCommands:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "unknown_commands_total"}),
		DecodeErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "decode_errors_total"}),
		RulesMatched:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "rules_matched_total"}),
		BulletinsSent:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_notify", Name: "bulletins_sent_total"}, []string{"formatter"}),
		BulletinsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_notify", Name: "bulletins_suppressed_total"}, []string{"formatter"}),
		Deliveries:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "deliveries_total"}),
		DeliveryErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "delivery_errors_total"}),
		DeliveryDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_notify", Name: "delivery_duration_seconds"}),
		Connected:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_notify", Name: "connected"}),
		Reconnects:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_notify", Name: "reconnects_total"}),
	}
}
