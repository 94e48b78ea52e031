package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ahrav/judgestat/internal/ports"
)

// RunMetricName is the gauge holding every scalar run metric; the metric
// key is carried in the "metric" label.
const RunMetricName = "judgestat_run_metric"

// PushgatewaySink pushes run metrics to a Prometheus Pushgateway. The job is
// the run's project and the run name is the grouping key, so pushing a run
// again replaces its previous metrics. Artifacts are not stored.
type PushgatewaySink struct {
	url       string
	client    *http.Client
	username  string
	password  string
	gatherers []prometheus.Gatherer
}

// PushgatewayOption configures a PushgatewaySink.
type PushgatewayOption func(*PushgatewaySink)

// WithBasicAuth authenticates pushes.
func WithBasicAuth(username, password string) PushgatewayOption {
	return func(p *PushgatewaySink) { p.username, p.password = username, password }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) PushgatewayOption {
	return func(p *PushgatewaySink) { p.client = c }
}

// WithGatherer pushes the metrics of g alongside the run metrics, for
// example the pipeline's operational registry.
func WithGatherer(g prometheus.Gatherer) PushgatewayOption {
	return func(p *PushgatewaySink) { p.gatherers = append(p.gatherers, g) }
}

// NewPushgatewaySink creates a sink pushing to the Pushgateway at rawURL.
func NewPushgatewaySink(rawURL string, opts ...PushgatewayOption) (*PushgatewaySink, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid pushgateway url %q", rawURL)
	}
	p := &PushgatewaySink{url: strings.TrimSuffix(rawURL, "/"), client: http.DefaultClient}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *PushgatewaySink) Name() string { return "pushgateway" }

// LogMetrics replaces the run's metric group on the gateway.
func (p *PushgatewaySink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: RunMetricName,
		Help: "Scalar result of a judgment analysis run.",
	}, []string{"metric"})
	for k, v := range metrics {
		gauge.WithLabelValues(k).Set(v)
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(gauge); err != nil {
		return ports.NewTrackingError(p.Name(), OpLogMetrics, err)
	}

	pusher := push.New(p.url, run.Project).
		Gatherer(reg).
		Grouping("run", run.Name).
		Client(p.client)
	for _, g := range p.gatherers {
		pusher = pusher.Gatherer(g)
	}
	if p.username != "" {
		pusher = pusher.BasicAuth(p.username, p.password)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return ports.NewTrackingError(p.Name(), OpLogMetrics, classifyPushError(ctx, err))
	}
	return nil
}

// UploadArtifact accepts and ignores artifacts; a Pushgateway only holds
// metrics.
func (p *PushgatewaySink) UploadArtifact(context.Context, ports.RunInfo, ports.Artifact) error {
	return nil
}

// classifyPushError maps a push failure onto the tracking sentinels so the
// retry middleware can tell transient failures apart. The push client only
// reports the HTTP status inside its error text.
func classifyPushError(ctx context.Context, err error) error {
	msg := err.Error()
	var urlErr *url.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	case strings.Contains(msg, "status code 429"):
		return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
	case strings.Contains(msg, "status code 401"), strings.Contains(msg, "status code 403"):
		return fmt.Errorf("%w: %v", ports.ErrAuthenticationFailed, err)
	case strings.Contains(msg, "status code 5"), errors.As(err, &urlErr):
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ports.ErrInvalidResponse, err)
	}
}
