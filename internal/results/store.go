// Package results persists estimator run results. Stores are keyed by task
// id and deduplicate records by run id. Benchmark activities give every
// attempt of a run the same id, so a retry after a successful write replaces
// the record rather than adding a second one.
package results

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ahrav/mibench/internal/domain"
)

// Store persists run results.
type Store interface {
	// Put stores r. A result without a run id is assigned one.
	Put(ctx context.Context, r domain.RunResult) error

	// List returns the results of a task ordered by seed, estimator id and
	// run id.
	List(ctx context.Context, taskID string) ([]domain.RunResult, error)
}

// MemoryStore keeps results in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	byTask map[string]map[string]domain.RunResult
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byTask: make(map[string]map[string]domain.RunResult)}
}

func (s *MemoryStore) Put(_ context.Context, r domain.RunResult) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	runs, ok := s.byTask[r.TaskID]
	if !ok {
		runs = make(map[string]domain.RunResult)
		s.byTask[r.TaskID] = runs
	}
	runs[r.RunID] = r
	return nil
}

func (s *MemoryStore) List(_ context.Context, taskID string) ([]domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RunResult, 0, len(s.byTask[taskID]))
	for _, r := range s.byTask[taskID] {
		out = append(out, r)
	}
	sortResults(out)
	return out, nil
}

func prepare(r domain.RunResult) (domain.RunResult, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return domain.RunResult{}, err
	}
	return r, nil
}

func sortResults(rs []domain.RunResult) {
	slices.SortFunc(rs, func(a, b domain.RunResult) int {
		return cmp.Or(
			cmp.Compare(a.Seed, b.Seed),
			cmp.Compare(a.EstimatorID, b.EstimatorID),
			cmp.Compare(a.RunID, b.RunID),
		)
	})
}

// WriteJSONLines writes one JSON object per result.
func WriteJSONLines(w io.Writer, rs []domain.RunResult) error {
	enc := json.NewEncoder(w)
	for _, r := range rs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode result %s: %w", r.Key(), err)
		}
	}
	return nil
}
