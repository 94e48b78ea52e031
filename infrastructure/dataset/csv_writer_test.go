package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/judgestat/internal/testutils"
)

func TestDefaultFileName(t *testing.T) {
	ts := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	assert.Equal(t, "data_20240131_154500.csv", DefaultFileName(ts))
}

func TestCSVWriter_Path(t *testing.T) {
	ts := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	w := NewCSVWriter("out", WithClock(func() time.Time { return ts }))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "default name", in: "", want: filepath.Join("out", "data_20240131_154500.csv")},
		{name: "extension added", in: "my_data", want: filepath.Join("out", "my_data.csv")},
		{name: "extension kept", in: "my_data.csv", want: filepath.Join("out", "my_data.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Path(tt.in))
		})
	}
}

func TestNewCSVWriter_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultOutputDir, NewCSVWriter("").Dir())
}

func TestCSVWriter_WriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "saved_data")
	w := NewCSVWriter(dir)

	path, err := w.Write("table", []string{"Column1", "Column2"}, [][]string{{"1", "A"}, {"2", "B, quoted"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "table.csv"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Column1,Column2\n1,A\n2,\"B, quoted\"\n", string(body))
}

func TestCSVWriter_WriteRecordsRoundTrip(t *testing.T) {
	w := NewCSVWriter(t.TempDir())

	path, err := w.WriteRecords("", testutils.ExampleRecords())
	require.NoError(t, err)
	assert.Regexp(t, `data_\d{8}_\d{6}\.csv$`, path)

	ds, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutils.ExampleRecords(), ds.Records())
}

func TestCSVWriter_WriteFailsOnFileAsDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := NewCSVWriter(filepath.Join(blocker, "out")).Write("x", []string{"a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output dir")
}
