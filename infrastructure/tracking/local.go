package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ahrav/judgestat/internal/ports"
)

// LocalSink mirrors runs into a directory tree laid out like the S3 sink:
// <dir>/<project>/<run>/metrics.json plus a copy of every artifact. It
// backs offline runs.
type LocalSink struct {
	dir string
}

// NewLocalSink creates a sink rooted at dir.
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{dir: dir}
}

func (l *LocalSink) Name() string { return "local" }

// RunDir returns the directory holding a run's files.
func (l *LocalSink) RunDir(run ports.RunInfo) string {
	return filepath.Join(l.dir, run.Project, run.Name)
}

// LogMetrics writes metrics.json, replacing any previous file.
func (l *LocalSink) LogMetrics(_ context.Context, run ports.RunInfo, metrics map[string]float64) error {
	dir := l.RunDir(run)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ports.NewTrackingError(l.Name(), OpLogMetrics, err)
	}

	body, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return ports.NewTrackingError(l.Name(), OpLogMetrics, err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetricsObjectName), body, 0o600); err != nil {
		return ports.NewTrackingError(l.Name(), OpLogMetrics, err)
	}
	return nil
}

// UploadArtifact copies the artifact file into the run directory.
func (l *LocalSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := l.RunDir(run)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ports.NewTrackingError(l.Name(), OpUploadArtifact, err)
	}
	if err := copyFile(artifact.Path, filepath.Join(dir, filepath.Base(artifact.Path))); err != nil {
		return ports.NewTrackingError(l.Name(), OpUploadArtifact, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
