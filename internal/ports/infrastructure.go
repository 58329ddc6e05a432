package ports

import (
	"time"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations integrate with observability platforms like Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric, such as processed
	// respondents or rejected answer sets.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric, such as the
	// latest team balance score.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as the
	// distribution of dominance ratios.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// QuestionBankSource loads a validated question bank from an external
// source such as a file or an embedded asset.
type QuestionBankSource interface {
	// Load returns the parsed bank. Implementations must return an error
	// wrapping domain.ErrInvalidQuestionBank when validation fails.
	Load() (*domain.QuestionBank, error)
}
