// Package main provides the E2E assessment pipeline entry point.
// Executes: audit → feature extraction → classification → reputation →
// report assembly over the built-in fixture contracts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rugwatch/internal/classifier"
	"rugwatch/internal/features"
	"rugwatch/internal/pipeline"
	"rugwatch/internal/report"
	"rugwatch/internal/reputation"
	"rugwatch/internal/sink"
	"rugwatch/internal/storage/memory"
)

func main() {
	// Parse flags
	concurrency := flag.Int("concurrency", 4, "Number of concurrent assessment workers")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	// Create memory stores
	tokenAssessmentStore := memory.NewTokenAssessmentStore()
	deployerHistoryStore := memory.NewDeployerHistoryStore()
	deployerAssessmentStore := memory.NewDeployerAssessmentStore()
	reportStore := memory.NewReportStore()

	// Build classifiers from the default model configs
	tokenClassifier, deployerClassifier, err := buildClassifiers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building classifiers: %v\n", err)
		os.Exit(1)
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		TokenClassifier:         tokenClassifier,
		DeployerClassifier:      deployerClassifier,
		Aggregator:              reputation.NewAggregator(deployerHistoryStore),
		Assembler:               report.NewAssembler(nil),
		TokenAssessmentStore:    tokenAssessmentStore,
		DeployerAssessmentStore: deployerAssessmentStore,
		ReportStore:             reportStore,
		Verbose:                 *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating runner: %v\n", err)
		os.Exit(1)
	}

	records := pipeline.FixtureContracts()

	fmt.Println("=== E2E Pipeline ===")
	start := time.Now()

	result, err := runner.RunBatch(ctx, records, *concurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	// Emit reports as JSON lines
	out := sink.NewWriterSink(os.Stdout)
	for _, rep := range result.Reports {
		if err := out.Publish(ctx, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error emitting report: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nPipeline completed in %v:\n", time.Since(start))
	fmt.Printf("  Contracts: %d\n", result.Processed)
	fmt.Printf("  Reports: %d\n", len(result.Reports))
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}

// buildClassifiers creates the token and deployer classifiers from the
// default model configurations.
func buildClassifiers() (*classifier.TokenClassifier, *classifier.DeployerClassifier, error) {
	tokenScorer, err := classifier.FromConfig(features.TokenSchema(), classifier.DefaultTokenScorerConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("token scorer: %w", err)
	}

	deployerScorer, err := classifier.FromConfig(features.DeployerSchema(), classifier.DefaultDeployerScorerConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("deployer scorer: %w", err)
	}

	tokenClassifier, err := classifier.NewTokenClassifier(tokenScorer, classifier.DefaultCutoffs(), nil)
	if err != nil {
		return nil, nil, err
	}

	deployerClassifier, err := classifier.NewDeployerClassifier(deployerScorer, classifier.DefaultCutoffs(), nil)
	if err != nil {
		return nil, nil, err
	}

	return tokenClassifier, deployerClassifier, nil
}
