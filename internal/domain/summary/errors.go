package summary

import (
	"errors"
	"fmt"
)

// User-facing messages. Detail stays in Cause and in the logs.
const (
	OfflineMessage    = "You appear to be offline. Please check your connection and try again."
	GenerationMessage = "The summary could not be generated. Please try again later."
)

// ConfigurationError means the AI backend is not configured. Its message is shown as is.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// OfflineError means the AI service or the store could not be reached.
type OfflineError struct {
	Op    string
	Cause error
}

func (e *OfflineError) Error() string { return OfflineMessage }

func (e *OfflineError) Unwrap() error { return e.Cause }

// Detail is the log-only description.
func (e *OfflineError) Detail() string {
	return fmt.Sprintf("%s: connectivity failure: %v", e.Op, e.Cause)
}

// GenerationError covers an unusable AI answer and every unclassified failure.
type GenerationError struct {
	Op    string
	Cause error
}

func (e *GenerationError) Error() string { return GenerationMessage }

func (e *GenerationError) Unwrap() error { return e.Cause }

// Detail is the log-only description.
func (e *GenerationError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// ErrEmptySummary is the cause of a GenerationError when the AI answered without a summary.
var ErrEmptySummary = errors.New("AI response contained no summary")

// ErrNothingToSummarize is the cause of a GenerationError when the day has no announcement text.
var ErrNothingToSummarize = errors.New("general announcement has no content")

// Classify maps any failure to one of the three error kinds. Errors that already are one
// of them pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigurationError
	var offErr *OfflineError
	var genErr *GenerationError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &offErr), errors.As(err, &genErr):
		return err
	case IsConnectivityError(err):
		return &OfflineError{Op: op, Cause: err}
	default:
		return &GenerationError{Op: op, Cause: err}
	}
}

// Detail returns the log-only description of err.
func Detail(err error) string {
	var offErr *OfflineError
	var genErr *GenerationError
	switch {
	case errors.As(err, &offErr):
		return offErr.Detail()
	case errors.As(err, &genErr):
		return genErr.Detail()
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
