package domain

import (
	"fmt"
	"strings"
)

// Column identifies one of the categorical columns of a judgment record.
// Columns are what the engine cross-tabulates.
type Column string

// Supported judgment columns. The string values match the CSV header names.
const (
	// ColumnCategory partitions records by prompt type.
	ColumnCategory Column = "category"

	// ColumnHumanWinner holds the human judge's choice.
	ColumnHumanWinner Column = "human_winner"

	// ColumnGPTWinner holds the model judge's choice.
	ColumnGPTWinner Column = "gpt_winner"
)

// RequiredColumns lists the columns every input source must provide, in
// canonical order.
var RequiredColumns = []Column{ColumnCategory, ColumnHumanWinner, ColumnGPTWinner}

// ParseColumn maps a column name to a Column. Leading and trailing
// whitespace is ignored; matching is otherwise exact.
func ParseColumn(name string) (Column, error) {
	c := Column(strings.TrimSpace(name))
	switch c {
	case ColumnCategory, ColumnHumanWinner, ColumnGPTWinner:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
}

// String returns the column's header name.
func (c Column) String() string { return string(c) }

// JudgmentRecord is one row of the input dataset: which of two responses a
// human and a model evaluator preferred for a prompt of a given category.
type JudgmentRecord struct {
	// Category labels the prompt type, e.g. "Open-ended" or "Closed-ended".
	Category string `json:"category"`

	// HumanWinner is the label chosen by the human judge, e.g. "A" or "B".
	HumanWinner string `json:"human_winner"`

	// GPTWinner is the label chosen by the model judge, drawn from the same
	// label domain as HumanWinner.
	GPTWinner string `json:"gpt_winner"`

	// Row is the 1-based source line the record was read from. Zero for
	// records built in memory.
	Row int `json:"-"`
}

// Value returns the record's value for the given column.
func (r JudgmentRecord) Value(c Column) (string, error) {
	switch c {
	case ColumnCategory:
		return r.Category, nil
	case ColumnHumanWinner:
		return r.HumanWinner, nil
	case ColumnGPTWinner:
		return r.GPTWinner, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, string(c))
	}
}

// Agrees reports whether both judges picked the same label. Comparison is an
// exact string match.
func (r JudgmentRecord) Agrees() bool { return r.HumanWinner == r.GPTWinner }

// validate checks that every required field is non-empty.
func (r JudgmentRecord) validate() error {
	for _, c := range RequiredColumns {
		v, _ := r.Value(c)
		if v == "" {
			return fmt.Errorf("%s: %w", c, ErrEmptyValue)
		}
	}
	return nil
}

// JudgmentDataset is an ordered, immutable collection of judgment records.
// Every record in a dataset has non-empty category and winner labels.
// The zero value is an empty dataset.
type JudgmentDataset struct {
	records []JudgmentRecord
}

// NewJudgmentDataset validates and copies records into a new dataset.
// It returns a ValidationError listing every record that is missing a
// required value.
func NewJudgmentDataset(records []JudgmentRecord) (*JudgmentDataset, error) {
	verr := NewValidationError("JudgmentDataset")
	for i, r := range records {
		if err := r.validate(); err != nil {
			pos := r.Row
			if pos == 0 {
				pos = i + 1
			}
			verr.AddError(fmt.Sprintf("record %d: %v", pos, err))
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	cp := make([]JudgmentRecord, len(records))
	copy(cp, records)
	return &JudgmentDataset{records: cp}, nil
}

// Len returns the number of records in the dataset. A nil dataset has zero
// records.
func (d *JudgmentDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *JudgmentDataset) At(i int) JudgmentRecord { return d.records[i] }

// Records returns a copy of the dataset's records in load order.
func (d *JudgmentDataset) Records() []JudgmentRecord {
	if d == nil {
		return nil
	}
	cp := make([]JudgmentRecord, len(d.records))
	copy(cp, d.records)
	return cp
}

// Filter returns a new dataset holding the records for which keep returns
// true, preserving order.
func (d *JudgmentDataset) Filter(keep func(JudgmentRecord) bool) *JudgmentDataset {
	out := &JudgmentDataset{}
	if d == nil {
		return out
	}
	for _, r := range d.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Column returns every value of the given column in load order.
func (d *JudgmentDataset) Column(c Column) ([]string, error) {
	if _, err := ParseColumn(string(c)); err != nil {
		return nil, err
	}
	vals := make([]string, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		v, _ := d.records[i].Value(c)
		vals = append(vals, v)
	}
	return vals, nil
}
