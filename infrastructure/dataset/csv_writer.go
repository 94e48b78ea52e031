package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahrav/judgestat/internal/domain"
)

// DefaultOutputDir is where CSV files are written when no directory is set.
const DefaultOutputDir = "saved_data"

// DefaultFileName returns the timestamped name used when a file is saved
// without an explicit name, e.g. data_20240131_154500.csv.
func DefaultFileName(now time.Time) string {
	return "data_" + now.Format("20060102_150405") + ".csv"
}

// CSVWriter saves tabular data as CSV files in a directory.
type CSVWriter struct {
	dir string
	now func() time.Time
}

// WriterOption configures a CSVWriter.
type WriterOption func(*CSVWriter)

// WithClock overrides the clock used for default file names.
func WithClock(now func() time.Time) WriterOption {
	return func(w *CSVWriter) { w.now = now }
}

// NewCSVWriter creates a writer for dir. An empty dir selects
// DefaultOutputDir.
func NewCSVWriter(dir string, opts ...WriterOption) *CSVWriter {
	if dir == "" {
		dir = DefaultOutputDir
	}
	w := &CSVWriter{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *CSVWriter) Dir() string { return w.dir }

// Path resolves the file a name would be written to. An empty name gets a
// timestamped default and a missing .csv extension is appended.
func (w *CSVWriter) Path(name string) string {
	switch {
	case name == "":
		name = DefaultFileName(w.now())
	case !strings.HasSuffix(name, ".csv"):
		name += ".csv"
	}
	return filepath.Join(w.dir, name)
}

// Write saves header and rows to name inside the output directory, creating
// the directory when missing. It returns the written path.
func (w *CSVWriter) Write(name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := w.Path(name)
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTable(f, header, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// WriteRecords saves judgment records with the canonical column header.
func (w *CSVWriter) WriteRecords(name string, records []domain.JudgmentRecord) (string, error) {
	header := make([]string, len(domain.RequiredColumns))
	for i, c := range domain.RequiredColumns {
		header[i] = c.String()
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Category, r.HumanWinner, r.GPTWinner}
	}
	return w.Write(name, header, rows)
}

func writeTable(out io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
