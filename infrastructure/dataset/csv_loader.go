// Package dataset reads and writes judgment data as CSV.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// DefaultInputPath is the file analyzed when no input is configured.
const DefaultInputPath = "filtered_data.csv"

var (
	// ErrMissingHeader indicates that the input has no header row.
	ErrMissingHeader = errors.New("missing header row")

	// ErrMissingColumn indicates that a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrShortRow indicates that a data row has fewer fields than needed to
	// reach a required column.
	ErrShortRow = errors.New("row has too few fields")
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1024

// CSVSource loads a JudgmentDataset from a CSV file with at least the
// category, human_winner and gpt_winner columns. Header names are matched
// after trimming whitespace and extra columns are ignored.
type CSVSource struct {
	path  string
	comma rune
}

// CSVOption configures a CSVSource.
type CSVOption func(*CSVSource)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) CSVOption {
	return func(s *CSVSource) { s.comma = r }
}

// NewCSVSource creates a source for the file at path.
func NewCSVSource(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{path: path, comma: ','}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the file path.
func (s *CSVSource) Name() string { return s.path }

// Load reads and validates every row of the file.
func (s *CSVSource) Load(ctx context.Context) (*domain.JudgmentDataset, error) {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return nil, domain.NewDatasetLoadError(s.path, 0, "", err)
	}
	defer f.Close()

	records, err := decode(ctx, f, s.path, s.comma)
	if err != nil {
		return nil, err
	}

	ds, err := domain.NewJudgmentDataset(records)
	if err != nil {
		return nil, domain.NewDatasetLoadError(s.path, 0, "", err)
	}

	clog.FromContext(ctx).Debug("dataset loaded", "source", s.path, "records", ds.Len())
	return ds, nil
}

// decode reads judgment records from r. The source name is used only for
// error context.
func decode(ctx context.Context, r io.Reader, source string, comma rune) ([]domain.JudgmentRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewDatasetLoadError(source, 0, "", ErrMissingHeader)
	}
	if err != nil {
		return nil, domain.NewDatasetLoadError(source, 1, "", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, domain.NewDatasetLoadError(source, 1, column(err), err)
	}

	var records []domain.JudgmentRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, domain.NewDatasetLoadError(source, line, "", err)
		}
		line, _ := cr.FieldPos(0)

		rec := domain.JudgmentRecord{Row: line}
		for _, c := range domain.RequiredColumns {
			i := index[c]
			if i >= len(fields) {
				return nil, domain.NewDatasetLoadError(source, line, c.String(),
					fmt.Errorf("%w: want at least %d, got %d", ErrShortRow, i+1, len(fields)))
			}
			v := fields[i]
			if strings.TrimSpace(v) == "" {
				return nil, domain.NewDatasetLoadError(source, line, c.String(), domain.ErrEmptyValue)
			}
			setValue(&rec, c, v)
		}
		records = append(records, rec)

		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, domain.NewDatasetLoadError(source, line, "", err)
			}
		}
	}
	return records, nil
}

// missingColumnError names the absent header so it can be reported as the
// load error's column.
type missingColumnError struct{ col domain.Column }

func (e *missingColumnError) Error() string { return fmt.Sprintf("%v %q", ErrMissingColumn, e.col) }
func (e *missingColumnError) Unwrap() error { return ErrMissingColumn }

func column(err error) string {
	var mc *missingColumnError
	if errors.As(err, &mc) {
		return mc.col.String()
	}
	return ""
}

// columnIndex maps each required column to its field position. The first
// occurrence of a duplicated header wins.
func columnIndex(header []string) (map[domain.Column]int, error) {
	index := make(map[domain.Column]int, len(domain.RequiredColumns))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		c, err := domain.ParseColumn(name)
		if err != nil {
			continue
		}
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}
	for _, c := range domain.RequiredColumns {
		if _, ok := index[c]; !ok {
			return nil, &missingColumnError{col: c}
		}
	}
	return index, nil
}

func setValue(r *domain.JudgmentRecord, c domain.Column, v string) {
	switch c {
	case domain.ColumnCategory:
		r.Category = v
	case domain.ColumnHumanWinner:
		r.HumanWinner = v
	case domain.ColumnGPTWinner:
		r.GPTWinner = v
	}
}

var _ ports.DatasetSource = (*CSVSource)(nil)
