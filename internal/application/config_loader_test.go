package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

func newTestLoader(t *testing.T) *ConfigLoader {
	t.Helper()
	loader, err := NewConfigLoader()
	require.NoError(t, err)
	return loader
}

// TestConfigLoader_LoadFromReader covers default filling, strict decoding
// and struct tag validation of analysis configurations.
func TestConfigLoader_LoadFromReader(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		verify  func(t *testing.T, config *AnalysisConfig)
	}{
		{
			name: "empty document yields defaults",
			yaml: "",
			verify: func(t *testing.T, config *AnalysisConfig) {
				assert.Equal(t, DefaultAnalysisConfig(), *config)
			},
		},
		{
			name: "full config",
			yaml: `
version: "1.2.0"
run:
  project: arena
  name: nightly
input:
  path: data/judgments.csv
output:
  dir: out
  formats: [console, png]
statistics:
  independence:
    enabled: true
    column_a: human_winner
    column_b: gpt_winner
    yates_correction: false
    alpha: 0.01
tracking:
  enabled: true
  pushgateway_url: http://localhost:9091
  s3:
    bucket: artifacts
    region: us-east-1
    endpoint: http://localhost:9000
    prefix: judgestat
  max_retries: 5
  base_delay: 100ms
  max_delay: 2s
  concurrency: 8
`,
			verify: func(t *testing.T, config *AnalysisConfig) {
				assert.Equal(t, "arena", config.Run.Project)
				assert.Equal(t, "nightly", config.Run.Name)
				assert.Equal(t, "data/judgments.csv", config.Input.Path)
				assert.Equal(t, []string{FormatConsole, FormatPNG}, config.Output.Formats)
				assert.True(t, config.HasFormat(FormatPNG))
				assert.False(t, config.HasFormat(FormatHTML))

				ind := config.Statistics.Independence
				assert.Equal(t, "human_winner", ind.ColumnA)
				assert.False(t, ind.YatesCorrection)
				assert.InDelta(t, 0.01, ind.Alpha, 1e-12)

				tr := config.Tracking
				assert.True(t, tr.HasSink())
				assert.Equal(t, "artifacts", tr.S3.Bucket)
				assert.Equal(t, 100*time.Millisecond, tr.BaseDelay)
				assert.Equal(t, 2*time.Second, tr.MaxDelay)
				assert.Equal(t, 8, tr.Concurrency)
				// Untouched fields keep their defaults.
				assert.Equal(t, 5, tr.Burst)
			},
		},
		{
			name:    "unknown field",
			yaml:    "version: \"1.0.0\"\ninputs:\n  path: x.csv\n",
			wantErr: "field inputs not found",
		},
		{
			name:    "bad semver",
			yaml:    "version: \"v1\"\n",
			wantErr: "semver",
		},
		{
			name:    "unknown format",
			yaml:    "output:\n  formats: [pdf]\n",
			wantErr: "reportformat",
		},
		{
			name:    "duplicate formats",
			yaml:    "output:\n  formats: [png, png]\n",
			wantErr: "unique",
		},
		{
			name:    "unknown column",
			yaml:    "statistics:\n  independence:\n    column_a: question_id\n",
			wantErr: "column",
		},
		{
			name:    "alpha out of range",
			yaml:    "statistics:\n  independence:\n    alpha: 1.5\n",
			wantErr: "Alpha",
		},
		{
			name:    "max delay below base delay",
			yaml:    "tracking:\n  base_delay: 3s\n  max_delay: 1s\n",
			wantErr: "MaxDelay",
		},
		{
			name:    "bucket without region",
			yaml:    "tracking:\n  s3:\n    bucket: artifacts\n",
			wantErr: "Region",
		},
		{
			name:    "tracking without sink",
			yaml:    "tracking:\n  enabled: true\n",
			wantErr: "no pushgateway_url",
		},
		{
			name:    "identical independence columns",
			yaml:    "statistics:\n  independence:\n    column_a: category\n    column_b: category\n",
			wantErr: "must differ",
		},
		{
			name:    "enabled test without columns",
			yaml:    "statistics:\n  independence:\n    column_a: \"\"\n",
			wantErr: "requires column_a and column_b",
		},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := loader.LoadFromReader(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.verify(t, config)
		})
	}
}

func TestConfigLoader_SemanticErrorsAreValidationErrors(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.LoadFromReader(strings.NewReader("tracking:\n  enabled: true\n"))
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestConfigLoader_LoadFromFile(t *testing.T) {
	loader := newTestLoader(t)

	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  path: other.csv\n"), 0o600))

	config, err := loader.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", config.Input.Path)

	_, err = loader.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigLoader_ValidateFlagOverrides(t *testing.T) {
	loader := newTestLoader(t)

	config := DefaultAnalysisConfig()
	require.NoError(t, loader.Validate(&config))

	config.Output.Formats = []string{"svg"}
	require.Error(t, loader.Validate(&config))
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("JUDGESTAT_S3_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("JUDGESTAT_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("JUDGESTAT_PUSHGATEWAY_USERNAME", "pusher")

	config := DefaultAnalysisConfig()
	require.NoError(t, LoadCredentials(context.Background(), &config))

	creds := config.Tracking.Credentials
	assert.Equal(t, "AKIDEXAMPLE", creds.S3AccessKeyID)
	assert.Equal(t, "secret", creds.S3SecretAccessKey)
	assert.Equal(t, "pusher", creds.PushgatewayUsername)
	assert.Empty(t, creds.PushgatewayPassword)
}

func TestLoadCredentials_Incomplete(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
	}{
		{
			name:    "access key without secret",
			env:     map[string]string{"JUDGESTAT_S3_ACCESS_KEY_ID": "AKIDEXAMPLE"},
			wantKey: "JUDGESTAT_S3_SECRET_ACCESS_KEY",
		},
		{
			name:    "secret without access key",
			env:     map[string]string{"JUDGESTAT_S3_SECRET_ACCESS_KEY": "secret"},
			wantKey: "JUDGESTAT_S3_ACCESS_KEY_ID",
		},
		{
			name:    "pushgateway password without username",
			env:     map[string]string{"JUDGESTAT_PUSHGATEWAY_PASSWORD": "hunter2"},
			wantKey: "JUDGESTAT_PUSHGATEWAY_USERNAME",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"JUDGESTAT_S3_ACCESS_KEY_ID", "JUDGESTAT_S3_SECRET_ACCESS_KEY",
				"JUDGESTAT_PUSHGATEWAY_USERNAME", "JUDGESTAT_PUSHGATEWAY_PASSWORD",
			} {
				t.Setenv(key, tt.env[key])
			}

			config := DefaultAnalysisConfig()
			err := LoadCredentials(context.Background(), &config)

			var cfgErr *ports.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.ConfigKey)
			assert.ErrorIs(t, err, ports.ErrConfigNotFound)
		})
	}
}

func TestAnalysisConfig_SummaryOptions(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	assert.Equal(t, DefaultSummaryOptions(), cfg.SummaryOptions())

	cfg.Statistics.Independence = IndependenceConfig{Enabled: false, ColumnA: " human_winner ", ColumnB: "gpt_winner"}
	assert.Equal(t, SummaryOptions{
		IndependenceTest: false,
		ColumnA:          domain.ColumnHumanWinner,
		ColumnB:          domain.ColumnGPTWinner,
	}, cfg.SummaryOptions())
}
