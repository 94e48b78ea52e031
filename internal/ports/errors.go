package ports

import (
	"errors"
	"fmt"
	"time"
)

// Common infrastructure errors that can occur during external service
// interactions.
var (
	// ErrRateLimited indicates that the service has rate limited the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates that the service returned an invalid
	// response.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrAuthenticationFailed indicates that authentication with the
	// service failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// TrackingError represents an error from an experiment-tracking sink.
// It includes details about the sink, operation, and any rate limit
// information.
type TrackingError struct {
	// Sink is the name of the tracking backend that generated the error.
	Sink string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error

	// RetryAfter indicates how long to wait before retrying, if applicable.
	RetryAfter *time.Duration
}

// Error implements the error interface for TrackingError.
func (e *TrackingError) Error() string {
	msg := fmt.Sprintf("tracking error: sink=%s, operation=%s, err=%v", e.Sink, e.Operation, e.Err)
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(", retry_after=%v", *e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TrackingError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the operation
// can be retried.
func (e *TrackingError) IsRetryable() bool {
	// Only network/service-level errors are retryable; bad credentials and
	// malformed payloads are not.
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewTrackingError creates a new TrackingError with the given details.
func NewTrackingError(sink, operation string, err error) *TrackingError {
	return &TrackingError{
		Sink:      sink,
		Operation: operation,
		Err:       err,
	}
}

// RenderError represents a failure of a presentation collaborator to
// produce one of its artifacts.
type RenderError struct {
	// Reporter is the name of the reporter that failed.
	Reporter string

	// Artifact is the chart, table or file that could not be produced.
	Artifact string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for RenderError.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render error: reporter=%s, artifact=%s, err=%v", e.Reporter, e.Artifact, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error { return e.Err }

// NewRenderError creates a new RenderError with the given details.
func NewRenderError(reporter, artifact string, err error) *RenderError {
	return &RenderError{
		Reporter: reporter,
		Artifact: artifact,
		Err:      err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
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
