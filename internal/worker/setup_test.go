package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/mibench/internal/config"
	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/metrics"
	"github.com/ahrav/mibench/internal/results"
)

func TestInitializeResultStore(t *testing.T) {
	store, err := InitializeResultStore(context.Background(), config.ResultsConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &results.MemoryStore{}, store)

	_, err = InitializeResultStore(context.Background(), config.ResultsConfig{Backend: "postgres"})
	require.Error(t, err)
}

func TestInitializeResultStore_UnreachableRedis(t *testing.T) {
	_, err := InitializeResultStore(context.Background(), config.ResultsConfig{
		Backend:     config.BackendRedis,
		RedisAddr:   "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	})
	require.ErrorContains(t, err, "connect to redis")
}

func TestInitializeRegistry(t *testing.T) {
	registry, err := InitializeRegistry([]config.EstimatorConfig{
		{ID: "ksg", Command: []string{"python", "ksg.py", "{samples}"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gaussian", "ksg"}, registry.IDs())

	_, err = InitializeRegistry([]config.EstimatorConfig{{ID: "gaussian", Command: []string{"x"}}})
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestRegisterAll(t *testing.T) {
	acts, err := InitializeActivities(context.Background(), config.DefaultConfig(), metrics.NewNoOp(), slog.Default())
	require.NoError(t, err)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	assert.NotPanics(t, func() { RegisterAll(env, acts) })
}
