// Command generate_sample_dataset writes a synthetic judgment CSV for
// exercising judgestat without real annotation data.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/internal/testutils"
)

func main() {
	var (
		size      = flag.Int("size", 500, "Number of judgments to generate")
		agreeRate = flag.Float64("agree-rate", 0.7, "Probability that the model copies the human decision")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		outDir    = flag.String("out", dataset.DefaultOutputDir, "Output directory")
		name      = flag.String("name", "", "File name (default data_<timestamp>.csv)")
	)
	flag.Parse()

	if *size < 1 {
		log.Fatalf("size must be positive, got %d", *size)
	}
	if *agreeRate < 0 || *agreeRate > 1 {
		log.Fatalf("agree-rate must be in [0, 1], got %g", *agreeRate)
	}

	records := testutils.GenerateSampleJudgmentDataset(*size, *agreeRate, *seed)

	path, err := dataset.NewCSVWriter(*outDir).WriteRecords(*name, records)
	if err != nil {
		log.Fatalf("Failed to save dataset: %v", err)
	}

	stats := testutils.ComputeDatasetStatistics(records)

	fmt.Printf("Generated judgment dataset:\n")
	fmt.Printf("- Path: %s\n", path)
	fmt.Printf("- Total records: %d\n", stats.TotalRecords)
	fmt.Printf("- Categories: %v\n", stats.CategoryCounts)
	fmt.Printf("- Agreement: %.2f%%\n", 100*float64(stats.Agreements)/float64(stats.TotalRecords))
}
