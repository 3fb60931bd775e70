// Package reputation maintains the per-deployer history of token
// assessments and derives deployer feature vectors from it.
package reputation

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/features"
	"rugwatch/internal/storage"
)

// shardCount is the number of lock shards. Appends for the same
// deployer serialize on one shard; appends for different deployers
// almost always proceed in parallel.
const shardCount = 64

// counters tracks per-label totals for one deployer.
type counters struct {
	safe       int
	suspicious int
	rugpull    int
}

// shard guards a slice of the deployer keyspace.
type shard struct {
	mu       sync.Mutex
	counters map[string]*counters
}

// Aggregator owns deployer histories. The backing store is append-only;
// per-label counters are maintained incrementally so vector derivation
// is O(1) after the first load.
type Aggregator struct {
	store  storage.DeployerHistoryStore
	shards [shardCount]shard
}

// NewAggregator creates an aggregator over a history store.
func NewAggregator(store storage.DeployerHistoryStore) *Aggregator {
	a := &Aggregator{store: store}
	for i := range a.shards {
		a.shards[i].counters = make(map[string]*counters)
	}
	return a
}

// shardFor picks the lock shard for a deployer address.
func (a *Aggregator) shardFor(deployer string) *shard {
	h := fnv.New32a()
	h.Write([]byte(deployer))
	return &a.shards[h.Sum32()%shardCount]
}

// Record appends a completed assessment to the deployer's history and
// returns the feature vector over the updated history. The append and
// the counter update happen under the deployer's shard lock, so the
// returned vector is never derived from a torn history. The assessment
// must be fully built before calling: Record never stores partial state.
func (a *Aggregator) Record(ctx context.Context, deployer string, assessment *domain.TokenAssessment) (domain.DeployerFeatureVector, error) {
	if deployer == "" || assessment == nil {
		return nil, storage.ErrInvalidInput
	}

	s := a.shardFor(deployer)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := a.loadCountersLocked(ctx, s, deployer)
	if err != nil {
		return nil, err
	}

	if err := a.store.Append(ctx, deployer, assessment); err != nil {
		return nil, fmt.Errorf("append history for deployer %s: %w", deployer, err)
	}
	c.add(assessment.Label)

	return features.DeployerVector(c.safe, c.suspicious, c.rugpull), nil
}

// Vector derives the feature vector over the deployer's current
// history without appending. A deployer with no history yields the
// all-zero vector.
func (a *Aggregator) Vector(ctx context.Context, deployer string) (domain.DeployerFeatureVector, error) {
	if deployer == "" {
		return nil, storage.ErrInvalidInput
	}

	s := a.shardFor(deployer)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := a.loadCountersLocked(ctx, s, deployer)
	if err != nil {
		return nil, err
	}
	return features.DeployerVector(c.safe, c.suspicious, c.rugpull), nil
}

// History returns the deployer's full assessment trail in insertion
// order. A deployer with no entries yields an empty history.
func (a *Aggregator) History(ctx context.Context, deployer string) (*domain.DeployerHistory, error) {
	if deployer == "" {
		return nil, storage.ErrInvalidInput
	}

	entries, err := a.store.ListByDeployer(ctx, deployer)
	if err != nil {
		return nil, fmt.Errorf("list history for deployer %s: %w", deployer, err)
	}

	return &domain.DeployerHistory{Deployer: deployer, Assessments: entries}, nil
}

// loadCountersLocked returns the deployer's counters, rebuilding them
// from the store on first access. Caller holds the shard lock.
func (a *Aggregator) loadCountersLocked(ctx context.Context, s *shard, deployer string) (*counters, error) {
	if c, ok := s.counters[deployer]; ok {
		return c, nil
	}

	entries, err := a.store.ListByDeployer(ctx, deployer)
	if err != nil {
		return nil, fmt.Errorf("load history for deployer %s: %w", deployer, err)
	}

	c := &counters{}
	for _, e := range entries {
		c.add(e.Label)
	}
	s.counters[deployer] = c
	return c, nil
}

// add bumps the counter for a label.
func (c *counters) add(label domain.TokenLabel) {
	switch label {
	case domain.TokenLabelSafe:
		c.safe++
	case domain.TokenLabelSuspicious:
		c.suspicious++
	case domain.TokenLabelRugpull:
		c.rugpull++
	}
}
