package qbf

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instruments a Solver updates as it runs.
// Pass nil to NewSolver to run without instrumentation.
type Metrics struct {
	Decisions     prometheus.Counter
	Propagations  prometheus.Counter
	Conflicts     prometheus.Counter
	Restarts      prometheus.Counter
	LearntClauses prometheus.Gauge
	SolveDuration prometheus.Histogram
}

// NewMetrics registers a fresh set of solver instruments on reg and returns
// them. instance labels every metric, so a single Registry can track
// several concurrent solves (see spec §5, "one Solver instance per
// goroutine").
func NewMetrics(reg prometheus.Registerer, instance string) *Metrics {
	labels := prometheus.Labels{"instance": instance}
	m := &Metrics{
		Decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "qbfsolver",
			Name:        "decisions_total",
			Help:        "Number of decision-literal assignments made.",
			ConstLabels: labels,
		}),
		Propagations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "qbfsolver",
			Name:        "propagations_total",
			Help:        "Number of Boolean constraint propagation calls.",
			ConstLabels: labels,
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "qbfsolver",
			Name:        "conflicts_total",
			Help:        "Number of conflicts encountered during search.",
			ConstLabels: labels,
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "qbfsolver",
			Name:        "restarts_total",
			Help:        "Number of search restarts performed.",
			ConstLabels: labels,
		}),
		LearntClauses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "qbfsolver",
			Name:        "learnt_clauses",
			Help:        "Current number of live learned clauses.",
			ConstLabels: labels,
		}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "qbfsolver",
			Name:        "solve_duration_seconds",
			Help:        "Wall-clock time spent in Solver.Solve.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Decisions, m.Propagations, m.Conflicts, m.Restarts, m.LearntClauses, m.SolveDuration)
	return m
}
