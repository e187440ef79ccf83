package metrics

import (
	"github.com/drakos74/grid-coin/internal/grid"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer is the process wide metrics collector.
var Observer = NewMetrics()

func init() {
	Observer.MustRegister(prometheus.DefaultRegisterer)
}

// Metrics holds the trading collectors.
type Metrics struct {
	Events       *prometheus.CounterVec
	FeedFailures *prometheus.CounterVec
	Ticks        *prometheus.CounterVec
	Capital      *prometheus.GaugeVec
	Equity       *prometheus.GaugeVec
	OpenSlots    *prometheus.GaugeVec
	Running      prometheus.Gauge
}

// NewMetrics creates new unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grid",
			Name:      "events_total",
			Help:      "Grid events by coin and type",
		}, []string{"coin", "type"}),
		FeedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grid",
			Name:      "feed_failures_total",
			Help:      "Ticks skipped because no price was available",
		}, []string{"coin"}),
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grid",
			Name:      "ticks_total",
			Help:      "Ticks applied to the ledger",
		}, []string{"coin"}),
		Capital: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "grid",
			Name:      "capital",
			Help:      "Uncommitted capital",
		}, []string{"coin"}),
		Equity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "grid",
			Name:      "equity",
			Help:      "Capital plus held positions at the last price",
		}, []string{"coin"}),
		OpenSlots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "grid",
			Name:      "open_slots",
			Help:      "Slots holding a position",
		}, []string{"coin"}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grid",
			Name:      "running",
			Help:      "1 while the trading loop is active",
		}),
	}
}

// MustRegister registers all collectors.
func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(m.Events, m.FeedFailures, m.Ticks, m.Capital, m.Equity, m.OpenSlots, m.Running)
}

// Event counts a grid event.
func (m *Metrics) Event(e grid.Event) {
	m.Events.WithLabelValues(string(e.Coin), string(e.Type)).Inc()
}

// Failure counts a skipped tick.
func (m *Metrics) Failure(coin string) {
	m.FeedFailures.WithLabelValues(coin).Inc()
}

// Tick records the ledger state after a tick.
func (m *Metrics) Tick(s grid.Summary) {
	coin := string(s.Coin)
	m.Ticks.WithLabelValues(coin).Inc()
	m.Capital.WithLabelValues(coin).Set(s.Capital)
	m.Equity.WithLabelValues(coin).Set(s.Equity)
	m.OpenSlots.WithLabelValues(coin).Set(float64(s.Open))
}

// Run flags the loop state.
func (m *Metrics) Run(running bool) {
	if running {
		m.Running.Set(1)
		return
	}
	m.Running.Set(0)
}
