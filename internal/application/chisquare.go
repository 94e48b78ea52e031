package application

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ahrav/judgestat/internal/domain"
)

// chiSquareTest computes Pearson's chi-square test of independence for an
// observed contingency table. With yates set, tables with exactly one degree
// of freedom have each observed count moved up to 0.5 toward its expected
// value before the statistic is summed.
func chiSquareTest(observed *domain.ContingencyTable, yates bool) (domain.IndependenceResult, error) {
	rows, cols := len(observed.Rows), len(observed.Cols)
	if rows < 2 || cols < 2 {
		return domain.IndependenceResult{}, fmt.Errorf(
			"%w: need at least 2 rows and 2 columns, got %dx%d", domain.ErrInsufficientData, rows, cols)
	}

	rowTotals := observed.RowTotals()
	colTotals := observed.ColTotals()
	for i, n := range rowTotals {
		if n == 0 {
			return domain.IndependenceResult{}, fmt.Errorf(
				"%w: row %q has zero total", domain.ErrInsufficientData, observed.Rows[i])
		}
	}
	for j, n := range colTotals {
		if n == 0 {
			return domain.IndependenceResult{}, fmt.Errorf(
				"%w: column %q has zero total", domain.ErrInsufficientData, observed.Cols[j])
		}
	}

	total := float64(observed.Total())
	dof := (rows - 1) * (cols - 1)
	corrected := yates && dof == 1

	expected := make([][]float64, rows)
	var statistic float64
	for i := range rows {
		expected[i] = make([]float64, cols)
		for j := range cols {
			exp := float64(rowTotals[i]) * float64(colTotals[j]) / total
			expected[i][j] = exp

			obs := float64(observed.Counts[i][j])
			if corrected {
				diff := exp - obs
				obs += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			statistic += (obs - exp) * (obs - exp) / exp
		}
	}

	dist := distuv.ChiSquared{K: float64(dof)}
	return domain.IndependenceResult{
		ColumnA:          observed.RowColumn,
		ColumnB:          observed.ColColumn,
		Statistic:        statistic,
		PValue:           dist.Survival(statistic),
		DegreesOfFreedom: dof,
		YatesCorrected:   corrected,
		Observed:         observed,
		Expected:         expected,
	}, nil
}
