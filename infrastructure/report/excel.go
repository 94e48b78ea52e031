package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// WorkbookFile is the spreadsheet written by ExcelReporter.
const WorkbookFile = "judgment_summary.xlsx"

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheet    = "Sheet1"
)

// ExcelReporter writes every derived table to its own worksheet.
type ExcelReporter struct {
	dir   string
	alpha float64
}

// NewExcelReporter creates a reporter writing into dir.
func NewExcelReporter(dir string, alpha float64) *ExcelReporter {
	return &ExcelReporter{dir: dir, alpha: alpha}
}

func (r *ExcelReporter) Name() string { return "xlsx" }

// Report saves the workbook and returns it as a single artifact.
func (r *ExcelReporter) Report(ctx context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, ports.NewRenderError(r.Name(), r.dir, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, ports.NewRenderError(r.Name(), WorkbookFile, err)
	}

	for _, t := range BuildTables(summary, r.alpha) {
		if err := writeSheet(f, t, bold); err != nil {
			return nil, ports.NewRenderError(r.Name(), t.Name, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, ports.NewRenderError(r.Name(), WorkbookFile, err)
	}
	f.SetActiveSheet(0)

	path := filepath.Join(r.dir, WorkbookFile)
	if err := f.SaveAs(path); err != nil {
		return nil, ports.NewRenderError(r.Name(), WorkbookFile, fmt.Errorf("save: %w", err))
	}
	return []ports.Artifact{{
		Name:        artifactName(WorkbookFile),
		Path:        path,
		ContentType: contentTypeXLSX,
	}}, nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(t.Name, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
