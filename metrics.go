package cqlish

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cqlish"

// Metrics holds the statement counters of a shell session.
type Metrics struct {
	registry   *prometheus.Registry
	statements *prometheus.CounterVec
	duration   prometheus.Histogram
	rows       prometheus.Counter
}

// NewMetrics registers the shell metrics in a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "statements_total",
				Help:      "Number of statements sent to the server.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "statement_duration_seconds",
			Help:      "Round trip time of successful statements.",
			Buckets:   prometheus.DefBuckets,
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rendered_rows_total",
			Help:      "Number of result rows printed.",
		}),
	}

	m.registry.MustRegister(m.statements, m.duration, m.rows)
	return m
}

// Registry returns the registry holding the shell metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(seconds float64, rows int, err error) {
	if err != nil {
		m.statements.WithLabelValues("error").Inc()
		return
	}

	m.statements.WithLabelValues("ok").Inc()
	m.duration.Observe(seconds)
	m.rows.Add(float64(rows))
}

// Stats is a summary of the session metrics.
type Stats struct {
	Statements uint64
	Failed     uint64
	Rows       uint64
	Seconds    float64
}

// Stats gathers the current values of the registry.
func (m *Metrics) Stats() (Stats, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	for _, f := range families {
		switch f.GetName() {
		case metricsNamespace + "_statements_total":
			for _, metric := range f.GetMetric() {
				v := uint64(metric.GetCounter().GetValue())
				s.Statements += v
				for _, l := range metric.GetLabel() {
					if l.GetName() == "result" && l.GetValue() == "error" {
						s.Failed += v
					}
				}
			}
		case metricsNamespace + "_statement_duration_seconds":
			for _, metric := range f.GetMetric() {
				s.Seconds += metric.GetHistogram().GetSampleSum()
			}
		case metricsNamespace + "_rendered_rows_total":
			for _, metric := range f.GetMetric() {
				s.Rows += uint64(metric.GetCounter().GetValue())
			}
		}
	}

	return s, nil
}
