package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the matching engine. A nil
// *Metrics is valid and turns every observation into a no-op.
type Metrics struct {
	RemindersDueTotal  prometheus.Counter
	NoticesTotal       *prometheus.CounterVec
	EchoesCreatedTotal prometheus.Counter
	EchoesExpiredTotal prometheus.Counter
	RolloversTotal     prometheus.Counter
	ActiveReminders    prometheus.Gauge
	TickDuration       prometheus.Histogram
}

// NewMetrics creates and registers engine metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RemindersDueTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_due_total",
			Help:      "Total number of due occurrences fired",
		}),
		NoticesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Total number of notices by send result",
		}, []string{"result"}),
		EchoesCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echoes_created_total",
			Help:      "Total number of escalation echoes created",
		}),
		EchoesExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echoes_expired_total",
			Help:      "Total number of echoes removed by the expiration cutoff",
		}),
		RolloversTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollovers_total",
			Help:      "Total number of recurring reminders rolled to the next cycle",
		}),
		ActiveReminders: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_reminders",
			Help:      "Active reminders seen by the last tick",
		}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time to complete one matching tick",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
		}),
	}
}

func (m *Metrics) IncDue() {
	if m != nil {
		m.RemindersDueTotal.Inc()
	}
}

func (m *Metrics) IncNotice(result string) {
	if m != nil {
		m.NoticesTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncEchoCreated() {
	if m != nil {
		m.EchoesCreatedTotal.Inc()
	}
}

func (m *Metrics) AddExpired(n int64) {
	if m != nil {
		m.EchoesExpiredTotal.Add(float64(n))
	}
}

func (m *Metrics) IncRollover() {
	if m != nil {
		m.RolloversTotal.Inc()
	}
}

func (m *Metrics) SetActive(n int) {
	if m != nil {
		m.ActiveReminders.Set(float64(n))
	}
}

func (m *Metrics) ObserveTick(seconds float64) {
	if m != nil {
		m.TickDuration.Observe(seconds)
	}
}
