// Package main provides the unified service that runs all components:
// - Ingestion (continuous): WebSocket deployment feed, verified-source fetch
// - Assessment (per contract): audit → classify → reputation → report
// - Digest (scheduled): RISK_DIGEST.md and CSV exports
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"rugwatch/internal/classifier"
	"rugwatch/internal/features"
	"rugwatch/internal/ingestion"
	"rugwatch/internal/observability"
	"rugwatch/internal/pipeline"
	"rugwatch/internal/report"
	"rugwatch/internal/reporting"
	"rugwatch/internal/reputation"
	"rugwatch/internal/sink"
	"rugwatch/internal/storage"
	chstore "rugwatch/internal/storage/clickhouse"
	"rugwatch/internal/storage/memory"
	"rugwatch/internal/storage/migrations"
	pgstore "rugwatch/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	wsEndpoint     string
	outputDir      string
	digestInterval time.Duration

	// Stores
	stores *allStores

	// Components
	metrics *observability.Metrics
	logger  *log.Logger

	// State
	mu               sync.Mutex
	lastDigestRun    time.Time
	digestRunning    bool
	ingestionStarted time.Time
	digestRuns       int
}

// allStores holds all storage implementations.
type allStores struct {
	contractStore           storage.ContractStore
	tokenAssessmentStore    storage.TokenAssessmentStore
	deployerHistoryStore    storage.DeployerHistoryStore
	deployerAssessmentStore storage.DeployerAssessmentStore
	reportStore             storage.ReportStore
	archiveStore            storage.ReportArchiveStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("DEPLOY_WS_ENDPOINT"), "Deployment feed WebSocket endpoint")
	explorerURL := flag.String("explorer-url", os.Getenv("EXPLORER_API_URL"), "Etherscan-compatible API URL for verified source")
	explorerKey := flag.String("explorer-api-key", os.Getenv("EXPLORER_API_KEY"), "Explorer API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	kafkaBrokers := flag.String("kafka-brokers", os.Getenv("KAFKA_BROKERS"), "Comma-separated Kafka brokers for report publishing")
	kafkaTopic := flag.String("kafka-topic", envOrDefault("KAFKA_TOPIC", "rugwatch.reports"), "Kafka topic for reports")
	outputDir := flag.String("output-dir", "output", "Output directory for digests")
	digestInterval := flag.Duration("digest-interval", 6*time.Hour, "Digest generation interval")
	workers := flag.Int("workers", 4, "Number of concurrent assessment workers")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("")

	server := &Server{
		wsEndpoint:     *wsEndpoint,
		outputDir:      *outputDir,
		digestInterval: *digestInterval,
		stores:         stores,
		metrics:        metrics,
		logger:         logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	// Run the unified server
	err = server.Run(ctx, runOptions{
		explorerURL:  *explorerURL,
		explorerKey:  *explorerKey,
		kafkaBrokers: *kafkaBrokers,
		kafkaTopic:   *kafkaTopic,
		workers:      *workers,
		verbose:      *verbose,
	})
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runOptions struct {
	explorerURL  string
	explorerKey  string
	kafkaBrokers string
	kafkaTopic   string
	workers      int
	verbose      bool
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		reportStore := memory.NewReportStore()
		stores := &allStores{
			contractStore:           memory.NewContractStore(),
			tokenAssessmentStore:    memory.NewTokenAssessmentStore(),
			deployerHistoryStore:    memory.NewDeployerHistoryStore(),
			deployerAssessmentStore: memory.NewDeployerAssessmentStore(),
			reportStore:             reportStore,
			archiveStore:            reportStore,
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	stores := &allStores{
		contractStore:           pgstore.NewContractStore(pool),
		tokenAssessmentStore:    pgstore.NewTokenAssessmentStore(pool),
		deployerHistoryStore:    pgstore.NewDeployerHistoryStore(pool),
		deployerAssessmentStore: pgstore.NewDeployerAssessmentStore(pool),
		reportStore:             pgstore.NewReportStore(pool),
	}

	cleanup := func() { pool.Close() }

	// ClickHouse archive is optional
	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		stores.archiveStore = chstore.NewReportArchiveStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// Run starts ingestion and the digest scheduler.
func (s *Server) Run(ctx context.Context, opts runOptions) error {
	s.logger.Println("Starting unified server...")

	runner, err := s.buildPipeline(opts.verbose)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	// Deployment feed
	source, err := ingestion.NewWSDeploymentSource(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect deployment feed: %w", err)
	}
	defer source.Close()

	// Verified-source fetcher is optional
	var fetcher ingestion.SourceFetcher
	if opts.explorerURL != "" {
		fetcher = ingestion.NewEtherscanSourceFetcher(opts.explorerURL, opts.explorerKey)
	}

	// Kafka sink is optional
	var reportSink sink.ReportSink
	if opts.kafkaBrokers != "" {
		reportSink, err = sink.NewKafkaSink(opts.kafkaBrokers, opts.kafkaTopic)
		if err != nil {
			return fmt.Errorf("create kafka sink: %w", err)
		}
		defer reportSink.Close()
		s.logger.Printf("Publishing reports to Kafka topic %s", opts.kafkaTopic)
	}

	ingestRunner, err := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        source,
		Fetcher:       fetcher,
		ContractStore: s.stores.contractStore,
		Pipeline:      runner,
		Sink:          reportSink,
		Metrics:       s.metrics,
		Workers:       opts.workers,
		Logger:        log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		return fmt.Errorf("create ingestion runner: %w", err)
	}

	s.mu.Lock()
	s.ingestionStarted = time.Now()
	s.mu.Unlock()

	errCh := make(chan error, 2)

	go func() {
		err := ingestRunner.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		err := s.runDigestScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("digest scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// buildPipeline assembles the assessment pipeline from default models.
func (s *Server) buildPipeline(verbose bool) (*pipeline.Runner, error) {
	tokenScorer, err := classifier.FromConfig(features.TokenSchema(), classifier.DefaultTokenScorerConfig())
	if err != nil {
		return nil, err
	}
	deployerScorer, err := classifier.FromConfig(features.DeployerSchema(), classifier.DefaultDeployerScorerConfig())
	if err != nil {
		return nil, err
	}
	tokenClassifier, err := classifier.NewTokenClassifier(tokenScorer, classifier.DefaultCutoffs(), nil)
	if err != nil {
		return nil, err
	}
	deployerClassifier, err := classifier.NewDeployerClassifier(deployerScorer, classifier.DefaultCutoffs(), nil)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(pipeline.Options{
		TokenClassifier:         tokenClassifier,
		DeployerClassifier:      deployerClassifier,
		Aggregator:              reputation.NewAggregator(s.stores.deployerHistoryStore),
		Assembler:               report.NewAssembler(nil),
		TokenAssessmentStore:    s.stores.tokenAssessmentStore,
		DeployerAssessmentStore: s.stores.deployerAssessmentStore,
		ReportStore:             s.stores.reportStore,
		Archive:                 s.stores.archiveStore,
		Metrics:                 s.metrics,
		Logger:                  log.New(os.Stdout, "[pipeline] ", log.LstdFlags|log.Lshortfile),
		Verbose:                 verbose,
	})
}

// runDigestScheduler regenerates digests on schedule.
func (s *Server) runDigestScheduler(ctx context.Context) error {
	s.logger.Printf("Starting digest scheduler (interval: %v)...", s.digestInterval)

	ticker := time.NewTicker(s.digestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runDigest(ctx)
		}
	}
}

// runDigest generates the digest files.
func (s *Server) runDigest(ctx context.Context) {
	s.mu.Lock()
	if s.digestRunning {
		s.mu.Unlock()
		s.logger.Println("Digest generation already running, skipping...")
		return
	}
	s.digestRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.digestRunning = false
		s.lastDigestRun = time.Now()
		s.digestRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Generating digest...")
	start := time.Now()

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.logger.Printf("Failed to create output directory: %v", err)
		return
	}

	gen := reporting.NewGenerator(s.stores.tokenAssessmentStore, s.stores.deployerAssessmentStore)
	digest, err := gen.Generate(ctx)
	if err != nil {
		s.logger.Printf("Digest generation error: %v", err)
		return
	}

	if err := writeDigestFiles(s.outputDir, digest); err != nil {
		s.logger.Printf("Digest write error: %v", err)
		return
	}

	s.logger.Printf("Digest generated in %v to %s/", time.Since(start), s.outputDir)
}

// writeDigestFiles renders the digest to Markdown and CSV files.
func writeDigestFiles(outputDir string, digest *reporting.Digest) error {
	md := reporting.RenderMarkdown(digest)
	if err := os.WriteFile(filepath.Join(outputDir, "RISK_DIGEST.md"), []byte(md), 0644); err != nil {
		return fmt.Errorf("write digest markdown: %w", err)
	}

	tokensCSV := reporting.RenderCSV(digest.HighRiskTokens)
	if err := os.WriteFile(filepath.Join(outputDir, "high_risk_tokens.csv"), []byte(tokensCSV), 0644); err != nil {
		return fmt.Errorf("write tokens csv: %w", err)
	}

	deployersCSV := reporting.RenderDeployerCSV(digest.TopDeployers)
	if err := os.WriteFile(filepath.Join(outputDir, "deployers.csv"), []byte(deployersCSV), 0644); err != nil {
		return fmt.Errorf("write deployers csv: %w", err)
	}

	return nil
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	IngestionStarted time.Time `json:"ingestion_started"`
	LastDigestRun    time.Time `json:"last_digest_run,omitempty"`
	DigestRuns       int       `json:"digest_runs"`
	DigestRunning    bool      `json:"digest_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.ingestionStarted).String(),
		IngestionStarted: s.ingestionStarted,
		LastDigestRun:    s.lastDigestRun,
		DigestRuns:       s.digestRuns,
		DigestRunning:    s.digestRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
