package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSampleJudgmentDataset(t *testing.T) {
	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a := GenerateSampleJudgmentDataset(50, 0.5, 42)
		b := GenerateSampleJudgmentDataset(50, 0.5, 42)
		assert.Equal(t, a, b)
	})

	t.Run("full copy rate always agrees", func(t *testing.T) {
		records := GenerateSampleJudgmentDataset(100, 1.0, 7)
		stats := ComputeDatasetStatistics(records)
		assert.Equal(t, 100, stats.TotalRecords)
		assert.Equal(t, 100, stats.Agreements)
	})

	t.Run("records are valid", func(t *testing.T) {
		records := GenerateSampleJudgmentDataset(20, 0.3, 1)
		ds := MustDataset(records)
		require.Equal(t, 20, ds.Len())
		for i, r := range records {
			assert.Equal(t, i+2, r.Row)
			assert.Contains(t, sampleCategories, r.Category)
			assert.Contains(t, sampleWinners, r.HumanWinner)
			assert.Contains(t, sampleWinners, r.GPTWinner)
		}
	})
}

func TestExampleDataset(t *testing.T) {
	ds := ExampleDataset()
	require.Equal(t, 3, ds.Len())
	stats := ComputeDatasetStatistics(ds.Records())
	assert.Equal(t, 2, stats.CategoryCounts[CategoryOpenEnded])
	assert.Equal(t, 1, stats.CategoryCounts[CategoryClosedEnded])
	assert.Equal(t, 2, stats.Agreements)
}

func TestMustDatasetPanicsOnInvalidRecords(t *testing.T) {
	records := ExampleRecords()
	records[1].GPTWinner = ""
	assert.Panics(t, func() { MustDataset(records) })
}
