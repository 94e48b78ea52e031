package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ahrav/judgestat/internal/ports"
)

// MetricsObjectName is the object holding a run's metrics as JSON.
const MetricsObjectName = "metrics.json"

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ClientConfig configures NewS3Client.
type S3ClientConfig struct {
	Region string
	// Endpoint targets an S3-compatible store such as MinIO. Path-style
	// addressing is used whenever it is set.
	Endpoint string
	// AccessKeyID and SecretAccessKey override the default credential
	// chain when both are set.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from the default AWS configuration chain
// with the overrides in cfg applied.
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Sink stores metrics and artifacts as objects under
// <prefix>/<project>/<run>/ in one bucket.
type S3Sink struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Sink creates a sink writing to bucket through client.
func NewS3Sink(client S3API, bucket, prefix string) (*S3Sink, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for name within the run's folder.
func (s *S3Sink) Key(run ports.RunInfo, name string) string {
	return path.Join(s.prefix, run.Project, run.Name, name)
}

// LogMetrics writes the metrics as a JSON object.
func (s *S3Sink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	body, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return ports.NewTrackingError(s.Name(), OpLogMetrics, err)
	}
	if err := s.put(ctx, s.Key(run, MetricsObjectName), bytes.NewReader(body), "application/json"); err != nil {
		return ports.NewTrackingError(s.Name(), OpLogMetrics, err)
	}
	return nil
}

// UploadArtifact streams the artifact file to the bucket.
func (s *S3Sink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	f, err := os.Open(filepath.Clean(artifact.Path))
	if err != nil {
		return ports.NewTrackingError(s.Name(), OpUploadArtifact, err)
	}
	defer f.Close()

	if err := s.put(ctx, s.Key(run, filepath.Base(artifact.Path)), f, artifact.ContentType); err != nil {
		return ports.NewTrackingError(s.Name(), OpUploadArtifact, err)
	}
	return nil
}

func (s *S3Sink) put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return classifyS3Error(ctx, err)
	}
	return nil
}

// classifyS3Error maps SDK failures onto the tracking sentinels.
func classifyS3Error(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	}

	var re *awshttp.ResponseError
	if !errors.As(err, &re) {
		// No HTTP response: the request never reached the store.
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	}

	switch code := re.HTTPStatusCode(); {
	case code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
	case code >= 500:
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ports.ErrAuthenticationFailed, err)
	default:
		return fmt.Errorf("%w: %v", ports.ErrInvalidResponse, err)
	}
}
