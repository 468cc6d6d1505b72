// Package metrics exports planner runs as Prometheus series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Agrid-Dev/coolsim/internal/planner"
)

const namespace = "coolsim"

type Recorder struct {
	runs     prometheus.Counter
	savings  prometheus.Gauge
	energy   *prometheus.GaugeVec
	adopted  prometheus.Gauge
	duration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_total",
			Help:      "Number of baseline/optimized comparisons computed",
		}),
		savings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "savings_percent",
			Help:      "Energy saved by the optimized policy in the latest run",
		}),
		energy: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_kwh",
			Help:      "24 h electrical energy of the latest run",
		}, []string{"policy"}),
		adopted: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_adopted",
			Help:      "1 when the latest optimized trace follows the lattice plan",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Time spent computing one comparison",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// Observe is a planner observer.
func (r *Recorder) Observe(s planner.Snapshot) {
	c := s.Comparison
	r.runs.Inc()
	r.savings.Set(c.SavingsPercent())
	r.energy.WithLabelValues("baseline").Set(c.Baseline.TotalKWh())
	r.energy.WithLabelValues("optimized").Set(c.Optimized.TotalKWh())
	if c.Plan.Adopted {
		r.adopted.Set(1)
	} else {
		r.adopted.Set(0)
	}
	r.duration.Observe(s.Elapsed.Seconds())
}
