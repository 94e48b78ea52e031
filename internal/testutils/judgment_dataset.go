// Package testutils provides utilities for testing, including mock objects and
// test data generators. These components are intended for internal use within
// the project's test suites and are not part of the public API.
package testutils

import (
	"math/rand"
	"time"

	"github.com/ahrav/judgestat/internal/domain"
)

// Categories and winner labels used by the generated datasets. They mirror
// the values found in the Chatbot Arena human judgment exports.
const (
	CategoryOpenEnded   = "Open-ended"
	CategoryClosedEnded = "Closed-ended"
	CategoryReasoning   = "Reasoning"

	WinnerModelA = "model_a"
	WinnerModelB = "model_b"
	WinnerTie    = "tie"
)

var (
	sampleCategories = []string{CategoryOpenEnded, CategoryClosedEnded, CategoryReasoning}
	sampleWinners    = []string{WinnerModelA, WinnerModelB, WinnerTie}
)

// ExampleRecords returns the three-row dataset used throughout the docs:
// two open-ended prompts with one disagreement and one closed-ended prompt on
// which both judges agree.
func ExampleRecords() []domain.JudgmentRecord {
	return []domain.JudgmentRecord{
		{Category: CategoryOpenEnded, HumanWinner: "A", GPTWinner: "A", Row: 2},
		{Category: CategoryOpenEnded, HumanWinner: "A", GPTWinner: "B", Row: 3},
		{Category: CategoryClosedEnded, HumanWinner: "B", GPTWinner: "B", Row: 4},
	}
}

// ExampleDataset wraps ExampleRecords in a dataset.
func ExampleDataset() *domain.JudgmentDataset {
	return MustDataset(ExampleRecords())
}

// MustDataset builds a dataset and panics on invalid records. It is meant
// for fixtures whose records are known to be valid.
func MustDataset(records []domain.JudgmentRecord) *domain.JudgmentDataset {
	ds, err := domain.NewJudgmentDataset(records)
	if err != nil {
		panic(err)
	}
	return ds
}

// GenerateSampleJudgmentDataset creates a synthetic judgment dataset.
// The seed parameter controls randomization - use time.Now().UnixNano() for
// non-deterministic generation or a fixed value for reproducible tests.
// agreeRate is the probability, in [0, 1], that the model copies the human
// decision instead of drawing its own.
func GenerateSampleJudgmentDataset(size int, agreeRate float64, seed int64) []domain.JudgmentRecord {
	rng := rand.New(rand.NewSource(seed))

	records := make([]domain.JudgmentRecord, 0, size)
	for i := range size {
		human := sampleWinners[rng.Intn(len(sampleWinners))]
		gpt := human
		if rng.Float64() >= agreeRate {
			gpt = sampleWinners[rng.Intn(len(sampleWinners))]
		}
		records = append(records, domain.JudgmentRecord{
			Category:    sampleCategories[rng.Intn(len(sampleCategories))],
			HumanWinner: human,
			GPTWinner:   gpt,
			Row:         i + 2,
		})
	}
	return records
}

// GenerateSampleJudgmentDatasetDefault creates a dataset with a time-based seed
// and a 70% copy rate.
func GenerateSampleJudgmentDatasetDefault(size int) []domain.JudgmentRecord {
	return GenerateSampleJudgmentDataset(size, 0.7, time.Now().UnixNano())
}

// DatasetStatistics holds simple counts over a generated dataset.
type DatasetStatistics struct {
	TotalRecords   int
	CategoryCounts map[string]int
	Agreements     int
}

// ComputeDatasetStatistics counts categories and agreements in records.
func ComputeDatasetStatistics(records []domain.JudgmentRecord) DatasetStatistics {
	stats := DatasetStatistics{
		TotalRecords:   len(records),
		CategoryCounts: make(map[string]int),
	}
	for _, r := range records {
		stats.CategoryCounts[r.Category]++
		if r.Agrees() {
			stats.Agreements++
		}
	}
	return stats
}
