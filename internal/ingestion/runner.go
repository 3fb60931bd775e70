package ingestion

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"rugwatch/internal/domain"
	"rugwatch/internal/observability"
	"rugwatch/internal/pipeline"
	"rugwatch/internal/sink"
	"rugwatch/internal/storage"
)

const (
	maxFetchRetries = 3
	baseRetryDelay  = 500 * time.Millisecond
)

// Runner consumes a deployment feed, resolves verified source, and pushes
// each contract through the assessment pipeline.
type Runner struct {
	source        DeploymentSource
	fetcher       SourceFetcher
	contractStore storage.ContractStore
	pipeline      *pipeline.Runner
	sink          sink.ReportSink
	metrics       *observability.Metrics
	workers       int
	logger        *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source        DeploymentSource
	Fetcher       SourceFetcher
	ContractStore storage.ContractStore
	Pipeline      *pipeline.Runner

	// Sink is optional; when nil, reports stay in the stores only.
	Sink sink.ReportSink
	// Metrics is optional.
	Metrics *observability.Metrics
	// Workers is the number of concurrent assessment workers. Default: 4.
	Workers int
	Logger  *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Source == nil {
		return nil, errors.New("deployment source required")
	}
	if opts.ContractStore == nil {
		return nil, errors.New("contract store required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("pipeline required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		source:        opts.Source,
		fetcher:       opts.Fetcher,
		contractStore: opts.ContractStore,
		pipeline:      opts.Pipeline,
		sink:          opts.Sink,
		metrics:       opts.Metrics,
		workers:       workers,
		logger:        logger,
	}, nil
}

// Run consumes the deployment feed until the context is cancelled or the
// feed closes. Worker errors do not stop the run; they are logged and
// counted so one bad contract cannot stall the feed.
func (r *Runner) Run(ctx context.Context) error {
	events, err := r.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	r.logger.Printf("[ingestion] subscribed, workers=%d", r.workers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case record, ok := <-events:
					if !ok {
						return nil
					}
					r.handleDeployment(ctx, record)
				}
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleDeployment resolves source, persists the record, and runs the
// assessment pipeline for a single deployment event.
func (r *Runner) handleDeployment(ctx context.Context, record *domain.ContractRecord) {
	if r.metrics != nil {
		r.metrics.DeploymentsReceived.Inc()
	}

	if record.Source == "" && r.fetcher != nil {
		src, err := r.fetchSourceWithRetry(ctx, record.Address)
		switch {
		case err == nil:
			record.Source = src
			if r.metrics != nil {
				r.metrics.SourceFetches.WithLabelValues("ok").Inc()
			}
		case errors.Is(err, ErrSourceUnavailable):
			// Unverified contracts still flow through; the pipeline
			// records the missing source as an assessment error.
			if r.metrics != nil {
				r.metrics.SourceFetches.WithLabelValues("unverified").Inc()
			}
		default:
			if r.metrics != nil {
				r.metrics.SourceFetches.WithLabelValues("error").Inc()
			}
			r.logger.Printf("[ingestion] source fetch failed for %s: %v", record.Address, err)
		}
	}

	if err := r.contractStore.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Feed replayed a known contract; skip re-assessment.
			return
		}
		r.countError("store_insert")
		r.logger.Printf("[ingestion] insert contract %s: %v", record.Address, err)
		return
	}

	report, err := r.pipeline.Process(ctx, record)
	if err != nil {
		if errors.Is(err, pipeline.ErrAlreadyAssessed) {
			return
		}
		r.countError("pipeline")
		r.logger.Printf("[ingestion] assess %s: %v", record.Address, err)
		return
	}

	if r.sink != nil {
		if err := r.sink.Publish(ctx, report); err != nil {
			if r.metrics != nil {
				r.metrics.SinkPublishErrors.Inc()
			}
			r.logger.Printf("[ingestion] publish report %s: %v", report.ReportID, err)
		}
	}
}

// fetchSourceWithRetry fetches verified source with exponential backoff.
// ErrSourceUnavailable is terminal and never retried.
func (r *Runner) fetchSourceWithRetry(ctx context.Context, address string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchRetries; attempt++ {
		src, err := r.fetcher.FetchSource(ctx, address)
		if err == nil {
			return src, nil
		}
		if errors.Is(err, ErrSourceUnavailable) {
			return "", err
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		// Exponential backoff: 500ms, 1s, 2s
		delay := baseRetryDelay * time.Duration(1<<attempt)
		r.logger.Printf("[ingestion] retry %d/%d source fetch for %s after %v: %v", attempt+1, maxFetchRetries, address, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (r *Runner) countError(kind string) {
	if r.metrics != nil {
		r.metrics.IngestionErrors.WithLabelValues(kind).Inc()
	}
}
