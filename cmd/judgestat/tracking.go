package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/ahrav/judgestat/infrastructure/tracking"
	"github.com/ahrav/judgestat/internal/application"
	"github.com/ahrav/judgestat/internal/ports"
)

const (
	sinkTimeout         = 30 * time.Second
	breakerMaxFailures  = 5
	breakerCooldown     = 30 * time.Second
	tracingInstrumentID = "judgestat"
)

// buildTracker creates one sink per configured destination and wraps each
// with the resilience middleware stack.
func buildTracker(
	ctx context.Context,
	cfg application.TrackingConfig,
	collector ports.MetricsCollector,
	gatherer prometheus.Gatherer,
) (*tracking.Tracker, error) {
	var sinks []tracking.Sink

	if cfg.PushgatewayURL != "" {
		opts := []tracking.PushgatewayOption{
			tracking.WithGatherer(gatherer),
			tracking.WithHTTPClient(&http.Client{Timeout: sinkTimeout}),
		}
		if u := cfg.Credentials.PushgatewayUsername; u != "" {
			opts = append(opts, tracking.WithBasicAuth(u, cfg.Credentials.PushgatewayPassword))
		}
		pg, err := tracking.NewPushgatewaySink(cfg.PushgatewayURL, opts...)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
	}

	if cfg.S3.Bucket != "" {
		if cfg.S3.Region == "" {
			return nil, ports.NewConfigError("tracking.s3.region", ports.ErrConfigNotFound)
		}
		client, err := tracking.NewS3Client(ctx, tracking.S3ClientConfig{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.Credentials.S3AccessKeyID,
			SecretAccessKey: cfg.Credentials.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		s3Sink, err := tracking.NewS3Sink(client, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}

	if cfg.LocalDir != "" {
		sinks = append(sinks, tracking.NewLocalSink(cfg.LocalDir))
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit == 0 {
		limit = rate.Inf
	}
	burst := max(cfg.Burst, 1)

	return tracking.NewTracker(sinks,
		tracking.WithConcurrency(cfg.Concurrency),
		tracking.WithMiddleware(
			tracking.TracingMiddleware(tracingInstrumentID),
			tracking.MetricsMiddleware(collector),
			tracking.CircuitBreakerMiddleware(breakerMaxFailures, breakerCooldown, collector),
			tracking.RetryMiddleware(cfg.MaxRetries, cfg.BaseDelay, cfg.MaxDelay),
			tracking.RateLimitMiddleware(limit, burst),
			tracking.TimeoutMiddleware(sinkTimeout),
		),
	)
}
