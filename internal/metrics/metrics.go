// Package metrics exposes planner activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/studyplan/internal/models"
)

const namespace = "studyplan"

// Collector holds the planner metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	plansGenerated   prometheus.Counter
	planFailures     *prometheus.CounterVec
	generateLatency  prometheus.Histogram
	sessionsPlanned  prometheus.Counter
	minutesPlanned   prometheus.Counter
	unallocated      *prometheus.CounterVec
	sessionsAccepted prometheus.Counter
	checkIns         *prometheus.CounterVec
	checkInRejected  *prometheus.CounterVec
	adherenceRate    prometheus.Gauge
	completionRate   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewCollector registers the planner metrics with reg. Tests pass a fresh
// prometheus.NewRegistry(); the server uses its own registry as well.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		plansGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Total number of study plans generated",
		}),
		planFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_failures_total",
			Help:      "Plan generation requests rejected, by error code",
		}, []string{"code"}),
		generateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_generation_seconds",
			Help:      "Plan generation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		sessionsPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_planned_total",
			Help:      "Total number of sessions proposed across generated plans",
		}),
		minutesPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minutes_planned_total",
			Help:      "Total study minutes proposed across generated plans",
		}),
		unallocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unallocated_total",
			Help:      "Deadlines left partially or fully unscheduled, by reason",
		}, []string{"reason"}),
		sessionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_accepted_total",
			Help:      "Sessions persisted as pending records",
		}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Recorded check-ins, by status",
		}, []string{"status"}),
		checkInRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_rejected_total",
			Help:      "Rejected check-ins, by error code",
		}, []string{"code"}),
		adherenceRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adherence_rate",
			Help:      "Adherence rate of the most recently computed window",
		}),
		completionRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "completion_rate",
			Help:      "Completion rate of the most recently computed window",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.plansGenerated,
		c.planFailures,
		c.generateLatency,
		c.sessionsPlanned,
		c.minutesPlanned,
		c.unallocated,
		c.sessionsAccepted,
		c.checkIns,
		c.checkInRejected,
		c.adherenceRate,
		c.completionRate,
	)

	return c
}

// RecordPlan records a successful generation run.
func (c *Collector) RecordPlan(plan models.StudyPlan, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.plansGenerated.Inc()
	c.generateLatency.Observe(elapsed.Seconds())
	c.sessionsPlanned.Add(float64(len(plan.Sessions)))
	c.minutesPlanned.Add(float64(plan.TotalMinutes()))
	for _, item := range plan.Unallocated {
		c.unallocated.WithLabelValues(string(item.Reason)).Inc()
	}
}

// RecordPlanFailure records a rejected generation request.
func (c *Collector) RecordPlanFailure(code string) {
	if c == nil {
		return
	}
	c.planFailures.WithLabelValues(code).Inc()
}

// RecordAccepted records newly persisted session records.
func (c *Collector) RecordAccepted(n int) {
	if c == nil {
		return
	}
	c.sessionsAccepted.Add(float64(n))
}

// RecordCheckIn records a successful check-in.
func (c *Collector) RecordCheckIn(status models.SessionStatus) {
	if c == nil {
		return
	}
	c.checkIns.WithLabelValues(string(status)).Inc()
}

// RecordCheckInRejected records a check-in that failed validation or lost the race.
func (c *Collector) RecordCheckInRejected(code string) {
	if c == nil {
		return
	}
	c.checkInRejected.WithLabelValues(code).Inc()
}

// RecordAdherence publishes the rates from the latest adherence computation.
func (c *Collector) RecordAdherence(m models.StudyPlanAdherenceMetrics) {
	if c == nil {
		return
	}
	c.adherenceRate.Set(m.AdherenceRate)
	c.completionRate.Set(m.CompletionRate)
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
