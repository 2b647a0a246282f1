// Package estimator runs mutual-information estimators against benchmark
// tasks. Estimators are opaque: they receive one seed's X and Y samples and
// return a single estimate. The Runner adds timing, timeouts, rate limiting
// and result validation around them.
package estimator

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ahrav/mibench/internal/domain"
)

// Estimator computes an MI estimate from paired samples. x and y have one
// inner slice per point and the same number of points.
type Estimator interface {
	ID() string
	Params() map[string]any
	Estimate(ctx context.Context, x, y [][]float64) (float64, error)
}

// EstimateFunc is the signature of an in-process estimator.
type EstimateFunc func(ctx context.Context, x, y [][]float64) (float64, error)

// Func adapts an EstimateFunc to Estimator.
type Func struct {
	id     string
	params map[string]any
	fn     EstimateFunc
}

// NewFunc creates an in-process estimator.
func NewFunc(id string, params map[string]any, fn EstimateFunc) *Func {
	return &Func{id: id, params: maps.Clone(params), fn: fn}
}

func (f *Func) ID() string { return f.id }

func (f *Func) Params() map[string]any { return maps.Clone(f.params) }

func (f *Func) Estimate(ctx context.Context, x, y [][]float64) (float64, error) {
	return f.fn(ctx, x, y)
}

// Registry maps estimator ids to estimators. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	estimators map[string]Estimator
}

// NewRegistry creates a registry holding ests.
// Returns an error wrapping domain.ErrInvalidParameter on duplicate ids.
func NewRegistry(ests ...Estimator) (*Registry, error) {
	r := &Registry{estimators: make(map[string]Estimator, len(ests))}
	for _, e := range ests {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an estimator under its id.
func (r *Registry) Register(e Estimator) error {
	if e == nil || e.ID() == "" {
		return fmt.Errorf("%w: estimator needs a non-empty id", domain.ErrInvalidParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.estimators[e.ID()]; ok {
		return fmt.Errorf("%w: estimator %q already registered", domain.ErrInvalidParameter, e.ID())
	}
	r.estimators[e.ID()] = e
	return nil
}

// Get looks up an estimator.
func (r *Registry) Get(id string) (Estimator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.estimators[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown estimator %q", domain.ErrInvalidParameter, id)
	}
	return e, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.estimators))
}
