package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements ports.MetricsCollector on Prometheus. It
// tracks unit latency and outcomes, guarded group sizes, team balance and
// the mix of respondent profile types.
type PrometheusMetrics struct {
	unitLatency      *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	groupMembers     *prometheus.HistogramVec
	balanceScore     *prometheus.GaugeVec
	profileTypes     *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the collectors with reg. A nil reg uses
// the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		unitLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rolecall_unit_duration_seconds",
				Help:    "Execution time of analysis units.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolecall_operations_total",
				Help: "Analysis operations by outcome.",
			},
			[]string{"operation", "status", "unit"},
		),
		groupMembers: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rolecall_group_members",
				Help:    "Member counts of groups processed by analysis units.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"unit"},
		),
		balanceScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rolecall_balance_score",
				Help: "Most recent 0-100 role balance score per group.",
			},
			[]string{"group"},
		),
		profileTypes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolecall_profiles_total",
				Help: "Classified respondent profiles by profile type and primary role.",
			},
			[]string{"profile_type", "primary_role"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rolecall_system_state",
				Help: "Miscellaneous engine state values.",
			},
			[]string{"metric", "unit"},
		),
	}
}

func unitLabel(labels map[string]string) string {
	if unit := labels["unit"]; unit != "" {
		return unit
	}
	return "unknown"
}

// RecordLatency records an operation's duration.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.unitLatency.WithLabelValues(operation, unitLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter increments the counter behind metric.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	unit := unitLabel(labels)

	switch metric {
	case "group_limit_exceeded_total":
		pm.operationCounter.WithLabelValues("group_guard", "exceeded", unit).Add(value)
	case "unit_failures_total":
		pm.operationCounter.WithLabelValues("unit_execution", "error", unit).Add(value)
	case "unit_executions_total":
		pm.operationCounter.WithLabelValues("unit_execution", "success", unit).Add(value)
	case "profiles_classified_total":
		pm.profileTypes.WithLabelValues(labels["profile_type"], labels["primary_role"]).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success", unit).Add(value)
	}
}

// RecordGauge sets the gauge behind metric.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	switch metric {
	case "balance_score":
		pm.balanceScore.WithLabelValues(labels["group"]).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric, unitLabel(labels)).Set(value)
	}
}

// RecordHistogram observes value in the histogram behind metric.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case "group_members":
		pm.groupMembers.WithLabelValues(unitLabel(labels)).Observe(value)
	default:
		pm.unitLatency.WithLabelValues(metric, unitLabel(labels)).Observe(value)
	}
}

// RecordProfile counts one classified respondent.
func RecordProfile(metrics ports.MetricsCollector, profile domain.Profile) {
	primary := "none"
	if profile.PrimaryRole != nil {
		primary = profile.PrimaryRole.String()
	}
	metrics.RecordCounter("profiles_classified_total", 1, map[string]string{
		"profile_type": string(profile.ProfileType),
		"primary_role": primary,
	})
}

// RecordReport publishes a group report's balance score.
func RecordReport(metrics ports.MetricsCollector, report domain.GroupReport) {
	metrics.RecordGauge("balance_score", float64(report.Balance), map[string]string{
		"group": report.Name,
	})
}
