// Package telemetry exposes prometheus metrics for statement planning and execution.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "joinsql"

// Statement kinds recorded by RecordPlan
const (
	KindSelect     = "select"
	KindCount      = "count"
	KindMultiValue = "multi_value"
)

var StatementsPlanned = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statements_planned_total",
		Help:      "Number of SQL statements generated, by kind.",
	},
	[]string{"kind"},
)

var PagingSubqueries = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paging_subqueries_total",
		Help:      "Number of id paging subqueries emitted instead of an outer LIMIT/OFFSET.",
	},
)

var TranslationFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translation_failures_total",
		Help:      "Number of plans that could not be translated to SQL, by reason.",
	},
	[]string{"reason"},
)

var PlanDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plan_duration_seconds",
		Help:      "Time spent generating SQL for a plan.",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
	},
)

var StatementsExecuted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statements_executed_total",
		Help:      "Number of generated statements executed, by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(StatementsPlanned)
	prometheus.MustRegister(PagingSubqueries)
	prometheus.MustRegister(TranslationFailures)
	prometheus.MustRegister(PlanDuration)
	prometheus.MustRegister(StatementsExecuted)
}

// RecordPlan records a successfully generated statement
func RecordPlan(kind string, started time.Time) {
	StatementsPlanned.WithLabelValues(kind).Inc()
	PlanDuration.Observe(time.Since(started).Seconds())
}

// RecordFailure records a translation failure
func RecordFailure(reason string) {
	TranslationFailures.WithLabelValues(reason).Inc()
}

// RecordExecution records the outcome of running a statement
func RecordExecution(err error) {
	if err != nil {
		StatementsExecuted.WithLabelValues("error").Inc()
		return
	}
	StatementsExecuted.WithLabelValues("ok").Inc()
}
