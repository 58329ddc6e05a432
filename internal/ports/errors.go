package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors raised outside the pure scoring core.
var (
	// ErrGroupTooLarge indicates that a group exceeded the configured
	// member limit.
	ErrGroupTooLarge = errors.New("group too large")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrMergeConflict indicates that two parallel units wrote different
	// values to the same state key.
	ErrMergeConflict = errors.New("conflicting state writes")
)

// GroupLimitError reports a group rejected by a member limit.
type GroupLimitError struct {
	// Group is the team or organization name, if known.
	Group string

	// Members is the number of members the group carried.
	Members int

	// Limit is the configured maximum.
	Limit int
}

// Error implements the error interface for GroupLimitError.
func (e *GroupLimitError) Error() string {
	return fmt.Sprintf("group limit error: group=%s, members=%d, limit=%d", e.Group, e.Members, e.Limit)
}

// Unwrap returns ErrGroupTooLarge.
func (e *GroupLimitError) Unwrap() error { return ErrGroupTooLarge }

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
