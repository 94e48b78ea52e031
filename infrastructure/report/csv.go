package report

import (
	"context"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

const contentTypeCSV = "text/csv"

// csvHeader is the long format shared by every exported table: one row per
// table cell, keyed by the table's first column and the cell's header.
var csvHeader = []string{"table", "key", "field", "value"}

// CSVReporter exports every derived table into a single long-format CSV.
type CSVReporter struct {
	writer   *dataset.CSVWriter
	filename string
	alpha    float64
}

// NewCSVReporter creates a reporter saving through w. An empty filename
// selects the writer's timestamped default.
func NewCSVReporter(w *dataset.CSVWriter, filename string, alpha float64) *CSVReporter {
	return &CSVReporter{writer: w, filename: filename, alpha: alpha}
}

func (r *CSVReporter) Name() string { return "csv" }

// Report writes the file and returns it as a single artifact.
func (r *CSVReporter) Report(ctx context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.writer.Write(r.filename, csvHeader, LongRows(BuildTables(summary, r.alpha)))
	if err != nil {
		return nil, ports.NewRenderError(r.Name(), r.filename, err)
	}
	return []ports.Artifact{{
		Name:        "summary_csv",
		Path:        path,
		ContentType: contentTypeCSV,
	}}, nil
}

// LongRows flattens tables into (table, key, field, value) rows. Values keep
// full float precision.
func LongRows(tables []Table) [][]string {
	var rows [][]string
	for _, t := range tables {
		for _, cells := range t.Rows {
			if len(cells) == 0 {
				continue
			}
			key := formatCell(cells[0], true)
			for j := 1; j < len(cells) && j < len(t.Header); j++ {
				rows = append(rows, []string{t.Name, key, t.Header[j], formatCell(cells[j], true)})
			}
		}
	}
	return rows
}
