package application

import (
	"slices"
	"time"

	"github.com/ahrav/judgestat/internal/domain"
)

// Report formats understood by the analyze command.
const (
	FormatConsole = "console"
	FormatPNG     = "png"
	FormatHTML    = "html"
	FormatXLSX    = "xlsx"
	FormatCSV     = "csv"
)

// AllFormats lists every report format in rendering order.
var AllFormats = []string{FormatConsole, FormatCSV, FormatPNG, FormatHTML, FormatXLSX}

// AnalysisConfig describes one analysis run
// and serves as the primary configuration entry point for the system.
// It is usually decoded from YAML; any field left unset receives the value
// from DefaultAnalysisConfig.
type AnalysisConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across releases.
	Version string `yaml:"version" validate:"required,semver"`
	// Run names the experiment the results are logged under.
	Run RunConfig `yaml:"run"`
	// Input locates the judgment CSV.
	Input InputConfig `yaml:"input"`
	// Output controls which reports are rendered and where.
	Output OutputConfig `yaml:"output"`
	// Statistics tunes the optional statistical tests.
	Statistics StatisticsConfig `yaml:"statistics"`
	// Tracking configures where metrics and artifacts are shipped.
	Tracking TrackingConfig `yaml:"tracking"`
}

// RunConfig identifies a run for the experiment tracker.
type RunConfig struct {
	// Project groups related runs. It becomes the pushgateway job name and
	// the first path segment of uploaded objects.
	Project string `yaml:"project" validate:"required,min=1,max=100"`
	// Name identifies this run within the project. A random name is
	// generated when empty.
	Name string `yaml:"name" validate:"omitempty,max=200"`
}

// InputConfig locates the judgment data.
type InputConfig struct {
	// Path is the CSV file holding category, human_winner and gpt_winner.
	Path string `yaml:"path" validate:"required"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Dir receives every file the reporters write. It is created when
	// missing.
	Dir string `yaml:"dir" validate:"required"`
	// Formats selects the reporters to run.
	Formats []string `yaml:"formats" validate:"required,min=1,unique,dive,reportformat"`
}

// StatisticsConfig tunes the statistical tests.
type StatisticsConfig struct {
	Independence IndependenceConfig `yaml:"independence"`
}

// IndependenceConfig configures the chi-square test of independence.
type IndependenceConfig struct {
	// Enabled runs the test. A degenerate contingency table fails the run
	// while the test is enabled.
	Enabled bool `yaml:"enabled"`
	// ColumnA and ColumnB name the tested columns. Both are required and
	// must differ while the test is enabled.
	ColumnA string `yaml:"column_a" validate:"omitempty,column"`
	ColumnB string `yaml:"column_b" validate:"omitempty,column"`
	// YatesCorrection applies the continuity correction to 2x2 tables.
	YatesCorrection bool `yaml:"yates_correction"`
	// Alpha is the significance level used when reporting the result.
	Alpha float64 `yaml:"alpha" validate:"gt=0,lt=1"`
}

// TrackingConfig configures the experiment tracker and its sinks. At least
// one sink must be configured when tracking is enabled.
type TrackingConfig struct {
	// Enabled turns on metric and artifact shipping.
	Enabled bool `yaml:"enabled"`
	// PushgatewayURL is the Prometheus pushgateway receiving run metrics.
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	// S3 configures the artifact bucket.
	S3 S3Config `yaml:"s3"`
	// LocalDir mirrors metrics and artifacts into a directory for offline
	// runs.
	LocalDir string `yaml:"local_dir"`
	// RateLimit caps sink calls per second; Burst is the bucket size.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `yaml:"burst" validate:"gte=0"`
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries int `yaml:"max_retries" validate:"gte=0,lte=10"`
	// BaseDelay and MaxDelay bound the exponential backoff between retries.
	BaseDelay time.Duration `yaml:"base_delay" validate:"gte=0"`
	MaxDelay  time.Duration `yaml:"max_delay" validate:"gtefield=BaseDelay"`
	// Concurrency bounds parallel artifact uploads.
	Concurrency int `yaml:"concurrency" validate:"gte=1,lte=32"`
	// Credentials hold secrets overlaid from the environment. They are
	// never read from the YAML file.
	Credentials TrackingCredentials `yaml:"-"`
}

// S3Config locates the artifact bucket. Endpoint is only needed for
// S3-compatible stores such as MinIO.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region" validate:"required_with=Bucket"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	Prefix   string `yaml:"prefix"`
}

// TrackingCredentials are read from the environment by LoadCredentials.
type TrackingCredentials struct {
	S3AccessKeyID       string `env:"JUDGESTAT_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey   string `env:"JUDGESTAT_S3_SECRET_ACCESS_KEY"`
	PushgatewayUsername string `env:"JUDGESTAT_PUSHGATEWAY_USERNAME"`
	PushgatewayPassword string `env:"JUDGESTAT_PUSHGATEWAY_PASSWORD"`
}

// HasSink reports whether any tracking sink is configured.
func (c TrackingConfig) HasSink() bool {
	return c.PushgatewayURL != "" || c.S3.Bucket != "" || c.LocalDir != ""
}

// DefaultAnalysisConfig returns the configuration used when no file is
// given: analyze filtered_data.csv into ./output with every report, run the
// category x human_winner independence test and leave tracking off.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Version: "1.0.0",
		Run:     RunConfig{Project: "judgestat"},
		Input:   InputConfig{Path: "filtered_data.csv"},
		Output: OutputConfig{
			Dir:     "output",
			Formats: append([]string(nil), AllFormats...),
		},
		Statistics: StatisticsConfig{
			Independence: IndependenceConfig{
				Enabled:         true,
				ColumnA:         "category",
				ColumnB:         "human_winner",
				YatesCorrection: true,
				Alpha:           0.05,
			},
		},
		Tracking: TrackingConfig{
			RateLimit:   5,
			Burst:       5,
			MaxRetries:  3,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Concurrency: 4,
		},
	}
}

// HasFormat reports whether the given report format is selected.
func (c AnalysisConfig) HasFormat(format string) bool {
	return slices.Contains(c.Output.Formats, format)
}

// SummaryOptions translates the statistics section into engine options.
// Column names must already be validated.
func (c AnalysisConfig) SummaryOptions() SummaryOptions {
	ind := c.Statistics.Independence
	colA, _ := domain.ParseColumn(ind.ColumnA)
	colB, _ := domain.ParseColumn(ind.ColumnB)
	return SummaryOptions{
		IndependenceTest: ind.Enabled,
		ColumnA:          colA,
		ColumnB:          colB,
	}
}
