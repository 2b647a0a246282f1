// Package worker wires the benchmark workflow and its activities into a
// Temporal worker.
package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/mibench/internal/benchmark"
)

// Registrar is the subset of a Temporal worker used for registration.
// sdkworker.Worker and the testsuite environments satisfy it.
type Registrar interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

var _ Registrar = sdkworker.Worker(nil)

// RegisterAll registers BenchmarkWorkflow and the activities it calls.
// Call once during worker start-up, before the worker is started.
func RegisterAll(w Registrar, activities *benchmark.Activities) {
	w.RegisterWorkflow(benchmark.BenchmarkWorkflow)
	w.RegisterActivity(activities.ListSeeds)
	w.RegisterActivity(activities.RunEstimator)
}
