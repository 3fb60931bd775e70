package ingestion_test

import (
	"context"
	"testing"
	"time"

	"rugwatch/internal/classifier"
	"rugwatch/internal/domain"
	"rugwatch/internal/features"
	"rugwatch/internal/ingestion"
	"rugwatch/internal/ingestion/stub"
	"rugwatch/internal/pipeline"
	"rugwatch/internal/report"
	"rugwatch/internal/reputation"
	"rugwatch/internal/sink"
	"rugwatch/internal/storage/memory"
)

var testClock = func() time.Time {
	return time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
}

func newPipeline(t *testing.T) *pipeline.Runner {
	t.Helper()

	tokenScorer, err := classifier.FromConfig(features.TokenSchema(), classifier.DefaultTokenScorerConfig())
	if err != nil {
		t.Fatalf("token scorer: %v", err)
	}
	tokenClassifier, err := classifier.NewTokenClassifier(tokenScorer, classifier.DefaultCutoffs(), testClock)
	if err != nil {
		t.Fatalf("token classifier: %v", err)
	}
	deployerScorer, err := classifier.FromConfig(features.DeployerSchema(), classifier.DefaultDeployerScorerConfig())
	if err != nil {
		t.Fatalf("deployer scorer: %v", err)
	}
	deployerClassifier, err := classifier.NewDeployerClassifier(deployerScorer, classifier.DefaultCutoffs(), testClock)
	if err != nil {
		t.Fatalf("deployer classifier: %v", err)
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		TokenClassifier:         tokenClassifier,
		DeployerClassifier:      deployerClassifier,
		Aggregator:              reputation.NewAggregator(memory.NewDeployerHistoryStore()),
		Assembler:               report.NewAssembler(testClock),
		TokenAssessmentStore:    memory.NewTokenAssessmentStore(),
		DeployerAssessmentStore: memory.NewDeployerAssessmentStore(),
		ReportStore:             memory.NewReportStore(),
	})
	if err != nil {
		t.Fatalf("pipeline.NewRunner: %v", err)
	}
	return runner
}

func TestRunner_ProcessesFeed(t *testing.T) {
	records := pipeline.FixtureContracts()

	contractStore := memory.NewContractStore()
	reportSink := sink.NewMemorySink()

	runner, err := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        stub.NewStubDeploymentSource(records),
		ContractStore: contractStore,
		Pipeline:      newPipeline(t),
		Sink:          reportSink,
		Workers:       2,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	published := reportSink.Reports()
	if len(published) != len(records) {
		t.Fatalf("published reports: got %d, want %d", len(published), len(records))
	}

	// Every record was persisted
	for _, r := range records {
		if _, err := contractStore.GetByAddress(ctx, r.Address); err != nil {
			t.Errorf("contract %s not stored: %v", r.Address, err)
		}
	}
}

func TestRunner_FetchesMissingSource(t *testing.T) {
	fixtures := pipeline.FixtureContracts()

	// Feed carries bare deployment events; source arrives via the fetcher.
	sources := make(map[string]string, len(fixtures))
	var events []*domain.ContractRecord
	for _, r := range fixtures {
		sources[r.Address] = r.Source
		bare := *r
		bare.Source = ""
		events = append(events, &bare)
	}
	// One contract never verifies
	unverified := fixtures[2].Address
	delete(sources, unverified)

	contractStore := memory.NewContractStore()
	reportSink := sink.NewMemorySink()

	runner, err := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        stub.NewStubDeploymentSource(events),
		Fetcher:       stub.NewStubSourceFetcher(sources),
		ContractStore: contractStore,
		Pipeline:      newPipeline(t),
		Sink:          reportSink,
		Workers:       2,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The unverified contract is stored but yields no report
	if len(reportSink.Reports()) != len(fixtures)-1 {
		t.Errorf("published reports: got %d, want %d", len(reportSink.Reports()), len(fixtures)-1)
	}
	stored, err := contractStore.GetByAddress(ctx, unverified)
	if err != nil {
		t.Fatalf("unverified contract not stored: %v", err)
	}
	if stored.Source != "" {
		t.Errorf("unverified contract should have empty source")
	}
	for _, r := range reportSink.Reports() {
		if r.Contract == unverified {
			t.Errorf("unverified contract produced a report")
		}
	}
}

func TestRunner_ReplayedFeedSkipsKnownContracts(t *testing.T) {
	records := pipeline.FixtureContracts()

	// The feed replays every deployment twice
	doubled := append(append([]*domain.ContractRecord{}, records...), records...)

	contractStore := memory.NewContractStore()
	reportSink := sink.NewMemorySink()

	runner, err := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        stub.NewStubDeploymentSource(doubled),
		ContractStore: contractStore,
		Pipeline:      newPipeline(t),
		Sink:          reportSink,
		Workers:       1,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(reportSink.Reports()); got != len(records) {
		t.Errorf("published reports: got %d, want %d", got, len(records))
	}
}

func TestNewRunner_RequiredOptions(t *testing.T) {
	contractStore := memory.NewContractStore()
	pipe := newPipeline(t)
	source := stub.NewStubDeploymentSource(nil)

	tests := []struct {
		name string
		opts ingestion.RunnerOptions
	}{
		{"missing source", ingestion.RunnerOptions{ContractStore: contractStore, Pipeline: pipe}},
		{"missing contract store", ingestion.RunnerOptions{Source: source, Pipeline: pipe}},
		{"missing pipeline", ingestion.RunnerOptions{Source: source, ContractStore: contractStore}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ingestion.NewRunner(tt.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
