package benchmark

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/mibench/internal/estimator"
	"github.com/ahrav/mibench/internal/results"
	"github.com/ahrav/mibench/internal/sampler"
	"github.com/ahrav/mibench/internal/task"
	"github.com/ahrav/mibench/pkg/activity"
	"github.com/ahrav/mibench/pkg/events"
)

// fixture bundles activities with the collaborators tests inspect.
type fixture struct {
	activities *Activities
	store      *results.MemoryStore
	sink       *events.MemoryEventSink
	flakyCalls *atomic.Int32
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	var calls atomic.Int32
	flaky := estimator.NewFunc("flaky", nil, func(context.Context, [][]float64, [][]float64) (float64, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("transient")
		}
		return 0.2, nil
	})
	broken := estimator.NewFunc("broken", nil, func(context.Context, [][]float64, [][]float64) (float64, error) {
		return 0, errors.New("always fails")
	})
	slow := estimator.NewFunc("slow", nil, func(ctx context.Context, _ [][]float64, _ [][]float64) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	registry, err := estimator.NewRegistry(estimator.NewGaussian(), flaky, broken, slow)
	require.NoError(t, err)

	store := results.NewMemoryStore()
	sink := events.NewMemoryEventSink()
	acts := NewActivities(
		activity.NewBaseActivities(sink),
		registry,
		estimator.NewRunner(estimator.RunnerConfig{}),
		store,
	)
	return fixture{activities: acts, store: store, sink: sink, flakyCalls: &calls}
}

// saveTask writes a 1x1 Gaussian task with the given seeds and returns its
// directory.
func saveTask(t *testing.T, id string, seeds ...int64) string {
	t.Helper()
	s, err := sampler.NewSplitMultinormal(1, 1, nil, [][]float64{{1, 0.6}, {0.6, 1}})
	require.NoError(t, err)
	tk, err := task.Generate(context.Background(), s, 200, seeds, id)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), id)
	require.NoError(t, tk.Save(dir, false))
	return dir
}
