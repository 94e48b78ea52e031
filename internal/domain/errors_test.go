package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetLoadError(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		row     int
		column  string
		err     error
		wantMsg string
	}{
		{
			name:    "file level error",
			source:  "filtered_data.csv",
			err:     errors.New("no such file"),
			wantMsg: "dataset load error: source=filtered_data.csv, err=no such file",
		},
		{
			name:    "missing header column",
			source:  "data.csv",
			column:  "gpt_winner",
			err:     ErrEmptyValue,
			wantMsg: "dataset load error: source=data.csv, column=gpt_winner, err=empty value",
		},
		{
			name:    "row and column",
			source:  "data.csv",
			row:     7,
			column:  "category",
			err:     ErrEmptyValue,
			wantMsg: "dataset load error: source=data.csv, row=7, column=category, err=empty value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatasetLoadError(tt.source, tt.row, tt.column, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error(), "Error message mismatch")
			assert.True(t, errors.Is(err, tt.err), "Should unwrap to underlying error")

			var loadErr *DatasetLoadError
			assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &loadErr))
			assert.Equal(t, tt.row, loadErr.Row)
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("AnalysisConfig")
		err.AddError("missing input path")

		assert.Equal(t, "validation error for AnalysisConfig: missing input path", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("AnalysisConfig")
		err.AddError("unknown column")
		err.AddError("unknown format")

		assert.Contains(t, err.Error(), "validation errors for AnalysisConfig")
		assert.Len(t, err.Errors, 2)
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})

	t.Run("matches invalid configuration", func(t *testing.T) {
		err := NewValidationError("Config")
		err.AddError("bad")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrEmptyDataset, "empty dataset"},
		{ErrInsufficientData, "insufficient data"},
		{ErrUnknownColumn, "unknown column"},
		{ErrEmptyValue, "empty value"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}
