package application

import (
	"fmt"

	"github.com/ahrav/judgestat/internal/domain"
)

// SummaryOptions selects the optional parts of a summary.
type SummaryOptions struct {
	// IndependenceTest enables the chi-square test between ColumnA and ColumnB.
	IndependenceTest bool

	// ColumnA and ColumnB are the columns tested for independence. They
	// default to category and human_winner.
	ColumnA domain.Column
	ColumnB domain.Column
}

// DefaultSummaryOptions tests whether the human winner depends on the prompt
// category.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		IndependenceTest: true,
		ColumnA:          domain.ColumnCategory,
		ColumnB:          domain.ColumnHumanWinner,
	}
}

// Summarize computes every derived view of the dataset in one pass over the
// engine's operations. Either the whole summary succeeds or the first error
// is returned; there are no partial summaries.
func (e *AggregationEngine) Summarize(ds *domain.JudgmentDataset, opts SummaryOptions) (*domain.Summary, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("summarize: %w", domain.ErrEmptyDataset)
	}

	var (
		s   = &domain.Summary{Records: ds.Len()}
		err error
	)

	if s.CategoryCounts, err = e.LabelCounts(ds, domain.ColumnCategory); err != nil {
		return nil, err
	}
	if s.CategoryDistribution, err = e.CategoryDistribution(ds); err != nil {
		return nil, err
	}
	if s.OverallAgreement, err = e.Agreement(ds); err != nil {
		return nil, err
	}
	if s.AgreementByCategory, err = e.AgreementByCategory(ds); err != nil {
		return nil, err
	}
	if s.DecisionMatrix, err = e.DecisionMatrix(ds); err != nil {
		return nil, err
	}
	if s.WinnerDistribution, err = e.WinnerDistributionByCategory(ds); err != nil {
		return nil, err
	}
	if s.HumanLabelCounts, err = e.LabelCounts(ds, domain.ColumnHumanWinner); err != nil {
		return nil, err
	}
	if s.GPTLabelCounts, err = e.LabelCounts(ds, domain.ColumnGPTWinner); err != nil {
		return nil, err
	}
	if s.CohenKappa, err = e.CohenKappa(ds); err != nil {
		return nil, err
	}

	if opts.IndependenceTest {
		colA, colB := opts.ColumnA, opts.ColumnB
		if colA == "" {
			colA = domain.ColumnCategory
		}
		if colB == "" {
			colB = domain.ColumnHumanWinner
		}
		res, err := e.IndependenceTest(ds, colA, colB)
		if err != nil {
			return nil, err
		}
		s.Independence = &res
	}

	return s, nil
}
