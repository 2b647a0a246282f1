package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/estimator"
	"github.com/ahrav/mibench/internal/results"
	"github.com/ahrav/mibench/internal/task"
	"github.com/ahrav/mibench/internal/worker"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		command     string
		estimatorID string
		store       bool
	)
	cmd := &cobra.Command{
		Use:   "run TASKDIR...",
		Short: "Run an estimator on every seed of one or more tasks",
		Long: `Run an estimator on every seed of the given tasks and print one JSON
result per line.

With --cmd the estimator is an external program. The placeholders {samples},
{dim_x} and {dim_y} in the command are replaced by the path of a CSV file
holding the seed's samples and the dimensions of X and Y. The program must
print the estimate as the last line of its output. Without --cmd the built-in
Gaussian estimator is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := pickEstimator(command, estimatorID)
			if err != nil {
				return err
			}
			var sink results.Store = results.NewMemoryStore()
			if store {
				if sink, err = worker.InitializeResultStore(cmd.Context(), a.cfg.Results); err != nil {
					return err
				}
			}

			runner := estimator.NewRunner(estimator.RunnerConfig{
				Timeout:       a.cfg.Runner.Timeout,
				RatePerSecond: a.cfg.Runner.RatePerSecond,
				Burst:         a.cfg.Runner.Burst,
			}, estimator.WithRunnerLogger(a.logger))

			truth := make(map[string]float64, len(args))
			var all []domain.RunResult
			for _, dir := range args {
				t, err := task.Load(dir)
				if err != nil {
					return fmt.Errorf("load %s: %w", dir, err)
				}
				truth[t.TaskID()] = t.MITrue()
				rs, err := runner.RunAll(cmd.Context(), t, est)
				all = append(all, rs...)
				if err != nil {
					_ = results.WriteJSONLines(cmd.OutOrStdout(), all)
					return err
				}
				for _, r := range rs {
					if err := sink.Put(cmd.Context(), r); err != nil {
						return err
					}
				}
			}
			if err := results.WriteJSONLines(cmd.OutOrStdout(), all); err != nil {
				return err
			}
			for _, s := range results.Summarize(all, func(id string) float64 { return truth[id] }) {
				a.logger.Info("estimator summary",
					"task_id", s.TaskID,
					"estimator_id", s.EstimatorID,
					"runs", s.Runs,
					"mean_estimate", s.MeanEstimate,
					"std_estimate", s.StdEstimate,
					"mi_true", truth[s.TaskID],
					"mean_absolute_error", s.MeanAbsError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "cmd", "", "external estimator command line")
	cmd.Flags().StringVar(&estimatorID, "estimator-id", "", "id recorded with the results (required with --cmd)")
	cmd.Flags().BoolVar(&store, "store", false, "also write results to the configured result store")
	return cmd
}

func pickEstimator(command, id string) (estimator.Estimator, error) {
	if command == "" {
		if id != "" && id != estimator.GaussianID {
			return nil, fmt.Errorf("--estimator-id %q needs --cmd", id)
		}
		return estimator.NewGaussian(), nil
	}
	if id == "" {
		return nil, fmt.Errorf("--cmd needs --estimator-id")
	}
	return estimator.NewCommand(id, estimator.ParseCommand(command), nil)
}
