package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/testutils"
)

func TestAggregationEngine_Summarize(t *testing.T) {
	engine := NewAggregationEngine()

	t.Run("example dataset", func(t *testing.T) {
		s, err := engine.Summarize(testutils.ExampleDataset(), DefaultSummaryOptions())
		require.NoError(t, err)

		assert.Equal(t, 3, s.Records)
		assert.Equal(t, 2, s.CategoryCounts[testutils.CategoryOpenEnded])
		assert.InDelta(t, 200.0/3, s.OverallAgreement.AgreePct, 1e-9)
		assert.Equal(t, 3, s.DecisionMatrix.Total())
		assert.Equal(t, domain.LabelCounts{"A": 2, "B": 1}, s.HumanLabelCounts)
		assert.Equal(t, domain.LabelCounts{"A": 1, "B": 2}, s.GPTLabelCounts)
		assert.InDelta(t, 0.4, s.CohenKappa, 1e-9)
		require.NotNil(t, s.Independence)
		assert.Equal(t, 1, s.Independence.DegreesOfFreedom)
	})

	t.Run("independence test disabled", func(t *testing.T) {
		s, err := engine.Summarize(testutils.ExampleDataset(), SummaryOptions{})
		require.NoError(t, err)
		assert.Nil(t, s.Independence)
	})

	t.Run("columns default when unset", func(t *testing.T) {
		s, err := engine.Summarize(testutils.ExampleDataset(), SummaryOptions{IndependenceTest: true})
		require.NoError(t, err)
		require.NotNil(t, s.Independence)
		assert.Equal(t, domain.ColumnCategory, s.Independence.ColumnA)
		assert.Equal(t, domain.ColumnHumanWinner, s.Independence.ColumnB)
	})

	t.Run("degenerate independence table fails the summary", func(t *testing.T) {
		ds := testutils.MustDataset([]domain.JudgmentRecord{
			{Category: "only", HumanWinner: "A", GPTWinner: "B"},
		})
		_, err := engine.Summarize(ds, DefaultSummaryOptions())
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("empty dataset", func(t *testing.T) {
		ds, err := domain.NewJudgmentDataset(nil)
		require.NoError(t, err)
		_, err = engine.Summarize(ds, DefaultSummaryOptions())
		require.ErrorIs(t, err, domain.ErrEmptyDataset)
	})
}
