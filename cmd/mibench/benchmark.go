package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/mibench/internal/benchmark"
	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/results"
)

func newBenchmarkCmd(a *app) *cobra.Command {
	var (
		estimatorIDs []string
		maxAttempts  int32
	)
	cmd := &cobra.Command{
		Use:   "benchmark TASKDIR...",
		Short: "Run estimators over tasks through the Temporal worker and wait for the report",
		Long: `Start a benchmark workflow on the configured task queue. Every
estimator is run on every seed of every task directory; the directories must
be readable by the workers. Results are printed as JSON lines.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.BenchmarkRequest{
				TaskDirs:       args,
				EstimatorIDs:   estimatorIDs,
				TimeoutSeconds: int(a.cfg.Runner.Timeout.Seconds()),
				MaxAttempts:    maxAttempts,
			}
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := dialTemporal(a.cfg.Temporal, a)
			if err != nil {
				return err
			}
			defer c.Close()

			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        "benchmark-" + uuid.NewString(),
				TaskQueue: a.cfg.Temporal.TaskQueue,
			}, benchmark.BenchmarkWorkflow, req)
			if err != nil {
				return fmt.Errorf("start benchmark workflow: %w", err)
			}
			a.logger.Info("benchmark started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

			var report domain.BenchmarkReport
			if err := run.Get(cmd.Context(), &report); err != nil {
				return fmt.Errorf("benchmark workflow: %w", err)
			}
			if err := results.WriteJSONLines(cmd.OutOrStdout(), report.Results); err != nil {
				return err
			}
			for _, f := range report.Failures {
				a.logger.Warn("run failed",
					"task_dir", f.TaskDir,
					"seed", f.Seed,
					"estimator_id", f.EstimatorID,
					"error", f.Error)
			}
			if !report.Succeeded() {
				return fmt.Errorf("%d of %d runs failed", len(report.Failures), len(report.Failures)+len(report.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&estimatorIDs, "estimator", []string{"gaussian"}, "estimator ids registered with the workers")
	cmd.Flags().Int32Var(&maxAttempts, "max-attempts", 0, "attempts per failed run (0 uses the workflow default)")
	return cmd
}
