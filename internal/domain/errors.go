package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while aggregating judgment data.
var (
	// ErrEmptyDataset indicates that an operation received a dataset (or a
	// category scope) with zero records.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInsufficientData indicates that a statistical test is degenerate for
	// the supplied data, e.g. a contingency table with a single row.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnknownColumn indicates that a column name does not identify one of
	// the categorical judgment columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrEmptyValue indicates that a required value is empty.
	ErrEmptyValue = errors.New("empty value")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// DatasetLoadError represents a failure to turn a tabular source into a
// JudgmentDataset. It records where in the source the problem was found.
type DatasetLoadError struct {
	// Source names the file or reader that was being loaded.
	Source string

	// Row is the 1-based line number of the offending row, or 0 when the
	// failure is not tied to a row (missing file, bad header).
	Row int

	// Column is the name of the offending column, if any.
	Column string

	// Err is the underlying error that caused the load to fail.
	Err error
}

// Error implements the error interface for DatasetLoadError.
func (e *DatasetLoadError) Error() string {
	msg := fmt.Sprintf("dataset load error: source=%s", e.Source)
	if e.Row > 0 {
		msg += fmt.Sprintf(", row=%d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(", column=%s", e.Column)
	}
	return msg + fmt.Sprintf(", err=%v", e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *DatasetLoadError) Unwrap() error { return e.Err }

// NewDatasetLoadError creates a new DatasetLoadError with the given details.
func NewDatasetLoadError(source string, row int, column string, err error) *DatasetLoadError {
	return &DatasetLoadError{
		Source: source,
		Row:    row,
		Column: column,
		Err:    err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// Unwrap lets callers match validation failures with ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
