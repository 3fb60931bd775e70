// Package pipeline coordinates the per-contract assessment flow:
// audit → extract → classify token → record reputation → classify
// deployer → assemble report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"rugwatch/internal/audit"
	"rugwatch/internal/classifier"
	"rugwatch/internal/domain"
	"rugwatch/internal/features"
	"rugwatch/internal/observability"
	"rugwatch/internal/report"
	"rugwatch/internal/reputation"
	"rugwatch/internal/storage"
)

// ErrAlreadyAssessed is returned when a contract address was already
// processed. The original assessment stands; the history is not
// double-counted.
var ErrAlreadyAssessed = errors.New("contract already assessed")

// Runner executes the end-to-end flow for single contracts and batches.
// Contracts are independent and may run in parallel; only the deployer
// history serializes, per deployer, inside the aggregator.
type Runner struct {
	auditor            *audit.Auditor
	extractor          *features.Extractor
	tokenClassifier    *classifier.TokenClassifier
	deployerClassifier *classifier.DeployerClassifier
	aggregator         *reputation.Aggregator
	assembler          *report.Assembler

	tokenAssessmentStore    storage.TokenAssessmentStore
	deployerAssessmentStore storage.DeployerAssessmentStore
	reportStore             storage.ReportStore
	archive                 storage.ReportArchiveStore

	metrics *observability.Metrics
	logger  *log.Logger
	verbose bool
}

// Options for creating a Runner.
type Options struct {
	// Required components
	Auditor            *audit.Auditor
	Extractor          *features.Extractor
	TokenClassifier    *classifier.TokenClassifier
	DeployerClassifier *classifier.DeployerClassifier
	Aggregator         *reputation.Aggregator
	Assembler          *report.Assembler

	// Required stores
	TokenAssessmentStore    storage.TokenAssessmentStore
	DeployerAssessmentStore storage.DeployerAssessmentStore
	ReportStore             storage.ReportStore

	// Optional
	Archive storage.ReportArchiveStore
	Metrics *observability.Metrics
	Logger  *log.Logger
	Verbose bool
}

// NewRunner creates a pipeline runner. Missing classifiers are a
// startup error: no contract is ever scored against an absent model.
func NewRunner(opts Options) (*Runner, error) {
	if opts.TokenClassifier == nil || opts.DeployerClassifier == nil {
		return nil, classifier.ErrModelUnavailable
	}
	if opts.Auditor == nil {
		opts.Auditor = audit.NewAuditor()
	}
	if opts.Extractor == nil {
		opts.Extractor = features.NewExtractor()
	}
	if opts.Aggregator == nil || opts.Assembler == nil {
		return nil, fmt.Errorf("pipeline runner: aggregator and assembler are required")
	}
	if opts.TokenAssessmentStore == nil || opts.DeployerAssessmentStore == nil || opts.ReportStore == nil {
		return nil, fmt.Errorf("pipeline runner: assessment and report stores are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Runner{
		auditor:                 opts.Auditor,
		extractor:               opts.Extractor,
		tokenClassifier:         opts.TokenClassifier,
		deployerClassifier:      opts.DeployerClassifier,
		aggregator:              opts.Aggregator,
		assembler:               opts.Assembler,
		tokenAssessmentStore:    opts.TokenAssessmentStore,
		deployerAssessmentStore: opts.DeployerAssessmentStore,
		reportStore:             opts.ReportStore,
		archive:                 opts.Archive,
		metrics:                 opts.Metrics,
		logger:                  opts.Logger,
		verbose:                 opts.Verbose,
	}, nil
}

// Process runs one contract end to end and returns its report.
// Classification completes before anything is committed: a cancelled or
// failed run leaves the deployer history untouched.
func (r *Runner) Process(ctx context.Context, record *domain.ContractRecord) (*domain.Report, error) {
	start := time.Now()
	if r.metrics != nil {
		r.metrics.InflightAssessments.Inc()
		defer r.metrics.InflightAssessments.Dec()
	}

	flags := r.auditor.Audit(record.Source)

	vec, err := r.extractor.Extract(record, flags)
	if err != nil {
		r.countError("missing_source")
		return nil, err
	}

	tokenAssessment, err := r.tokenClassifier.Classify(record.Address, vec)
	if err != nil {
		r.countError("token_classify")
		return nil, err
	}

	// Commit point. Nothing below starts if the run was cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.tokenAssessmentStore.Insert(ctx, tokenAssessment); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("contract %s: %w", record.Address, ErrAlreadyAssessed)
		}
		r.countError("store_token_assessment")
		return nil, fmt.Errorf("store token assessment for %s: %w", record.Address, err)
	}

	deployerVec, err := r.aggregator.Record(ctx, record.Deployer, tokenAssessment)
	if err != nil {
		r.countError("record_history")
		return nil, fmt.Errorf("record history for %s: %w", record.Address, err)
	}

	deployerAssessment, err := r.deployerClassifier.Classify(record.Deployer, deployerVec)
	if err != nil {
		r.countError("deployer_classify")
		return nil, err
	}

	if err := r.deployerAssessmentStore.Insert(ctx, deployerAssessment); err != nil {
		r.countError("store_deployer_assessment")
		return nil, fmt.Errorf("store deployer assessment for %s: %w", record.Deployer, err)
	}

	rep, err := r.assembler.Assemble(record, tokenAssessment, deployerAssessment)
	if err != nil {
		r.countError("assemble")
		return nil, err
	}

	if err := r.reportStore.Insert(ctx, rep); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		r.countError("store_report")
		return nil, fmt.Errorf("store report for %s: %w", record.Address, err)
	}

	if r.archive != nil {
		if err := r.archive.InsertBulk(ctx, []*domain.Report{rep}); err != nil {
			// Archive is best-effort analytics; the report is already durable.
			if r.metrics != nil {
				r.metrics.ArchiveErrors.Inc()
			}
			r.log("archive report %s: %v", rep.ReportID, err)
		}
	}

	r.observe(flags, tokenAssessment, deployerAssessment, start)
	r.log("assessed %s: token=%s deployer=%s", record.Address, tokenAssessment.Label, deployerAssessment.Label)

	return rep, nil
}

// BatchResult contains results from a batch execution.
type BatchResult struct {
	Processed int
	Reports   []*domain.Report
	Errors    []string
}

// RunBatch processes many contracts with bounded parallelism.
// Per-contract failures are collected, not fatal; already-assessed
// contracts are skipped silently.
func (r *Runner) RunBatch(ctx context.Context, records []*domain.ContractRecord, concurrency int) (*BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	result := &BatchResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, record := range records {
		g.Go(func() error {
			rep, err := r.Process(gctx, record)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			if err != nil {
				if errors.Is(err, ErrAlreadyAssessed) {
					return nil
				}
				if errors.Is(err, context.Canceled) {
					return err
				}
				result.Errors = append(result.Errors, fmt.Sprintf("process %s: %v", record.Address, err))
				return nil
			}
			result.Reports = append(result.Reports, rep)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// observe records metrics for a completed run.
func (r *Runner) observe(flags domain.AuditFlags, token *domain.TokenAssessment, deployer *domain.DeployerAssessment, start time.Time) {
	if r.metrics == nil {
		return
	}
	for _, name := range domain.FlagNames {
		if flags[name] {
			r.metrics.FlagsDetected.WithLabelValues(name).Inc()
		}
	}
	r.metrics.TokenAssessments.WithLabelValues(string(token.Label)).Inc()
	r.metrics.DeployerAssessments.WithLabelValues(string(deployer.Label)).Inc()
	r.metrics.ReportsEmitted.Inc()
	r.metrics.LastSuccessfulReport.SetToCurrentTime()
	r.metrics.PipelineLatency.Observe(time.Since(start).Seconds())
}

// countError bumps the pipeline error counter.
func (r *Runner) countError(kind string) {
	if r.metrics != nil {
		r.metrics.PipelineErrors.WithLabelValues(kind).Inc()
	}
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		r.logger.Printf("[pipeline] "+format, args...)
	}
}
