// SPDX-License-Identifier: MIT

package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the optimizer's collectors. A nil *Metrics records nothing.
type Metrics struct {
	Decisions       *prometheus.CounterVec   // by approach
	Warnings        prometheus.Counter       // ErrPlanInfeasible fallbacks
	EstimatedTime   *prometheus.HistogramVec // by strategy
	EstimatedMemory *prometheus.HistogramVec // by strategy, bytes
}

// NewMetrics registers the collectors with reg; nil reg yields nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "factorplan",
			Subsystem: "optimizer",
			Name:      "decisions_total",
			Help:      "Update approaches chosen per factor table",
		}, []string{"approach"}),
		Warnings: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "factorplan",
			Subsystem: "optimizer",
			Name:      "plan_infeasible_total",
			Help:      "Tables that fell back to normal updates because of the memory budget",
		}),
		EstimatedTime: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "factorplan",
			Subsystem: "optimizer",
			Name:      "estimated_execution_time",
			Help:      "Cost-model execution time estimates",
			Buckets:   prometheus.LinearBuckets(-2, 1, 12),
		}, []string{"strategy"}),
		EstimatedMemory: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "factorplan",
			Subsystem: "optimizer",
			Name:      "estimated_memory_bytes",
			Help:      "Cost-model memory estimates",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 12),
		}, []string{"strategy"}),
	}
}

func (m *Metrics) decided(a Approach) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(a.String()).Inc()
}

func (m *Metrics) infeasible() {
	if m == nil {
		return
	}
	m.Warnings.Inc()
}

func (m *Metrics) estimated(strategy string, time float64, memory int64) {
	if m == nil {
		return
	}
	m.EstimatedTime.WithLabelValues(strategy).Observe(time)
	m.EstimatedMemory.WithLabelValues(strategy).Observe(float64(memory))
}
