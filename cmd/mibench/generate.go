package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/suite"
	"github.com/ahrav/mibench/internal/task"
	"github.com/ahrav/mibench/pkg/events"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate task suites and save them to a directory",
	}
	cmd.AddCommand(
		newGenerateSpiralCmd(a),
		newGenerateStudentCmd(a),
		newGenerateCatalogCmd(a),
	)
	return cmd
}

type generateFlags struct {
	n         int
	seeds     int
	overwrite bool
}

func (f *generateFlags) register(cmd *cobra.Command, defaultN int) {
	cmd.Flags().IntVar(&f.n, "n", defaultN, "number of points per seed")
	cmd.Flags().IntVar(&f.seeds, "seed", 0, "number of seeds (default from configuration)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace tasks that already exist")
}

func (a *app) settings(f generateFlags) suite.Settings {
	seeds := f.seeds
	if seeds == 0 {
		seeds = a.cfg.Generation.Seeds
	}
	return suite.Settings{
		Seeds:   seeds,
		Samples: f.n,
		TaskOptions: []task.Option{
			task.WithWorkers(a.cfg.Generation.Workers),
			task.WithLogger(a.logger),
		},
	}
}

func (a *app) saveSuite(cmd *cobra.Command, dir string, tasks []*task.Task, overwrite bool) error {
	if err := suite.SaveAll(dir, tasks, overwrite); err != nil {
		return err
	}
	sink := events.NewLogEventSink(a.logger)
	for _, t := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tmi_true=%.6g\n", t.TaskID(), t.MITrue())
		// Event delivery is best effort; the suite is already on disk.
		if ev, err := domain.NewTaskGeneratedEvent("mibench.generate", t.Metadata(), t.Seeds()); err == nil {
			_ = sink.Append(cmd.Context(), ev)
		}
	}
	a.logger.Info("suite saved", "directory", dir, "tasks", len(tasks))
	return nil
}

func newGenerateSpiralCmd(a *app) *cobra.Command {
	var (
		f           generateFlags
		correlation float64
		speeds      []float64
	)
	cmd := &cobra.Command{
		Use:   "spiral DIRECTORY",
		Short: "Gaussian tasks wound by spirals of increasing speed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := suite.SpiralSuite(cmd.Context(), correlation, speeds, a.settings(f))
			if err != nil {
				return err
			}
			return a.saveSuite(cmd, args[0], tasks, f.overwrite)
		},
	}
	f.register(cmd, suite.DefaultSpiralSamples)
	cmd.Flags().Float64Var(&correlation, "correlation", suite.DefaultSpiralCorrelation, "correlation between X1 and Y")
	cmd.Flags().Float64SliceVar(&speeds, "speed", suite.DefaultSpiralSpeeds, "spiral speeds, one task each")
	return cmd
}

func newGenerateStudentCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "student DIRECTORY",
		Short: "Student-t tasks with uniform and sparse dispersion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := suite.StudentSuite(cmd.Context(), a.settings(f))
			if err != nil {
				return err
			}
			return a.saveSuite(cmd, args[0], tasks, f.overwrite)
		},
	}
	f.register(cmd, suite.DefaultStudentSamples)
	return cmd
}

func newGenerateCatalogCmd(a *app) *cobra.Command {
	var (
		f     generateFlags
		names []string
	)
	cmd := &cobra.Command{
		Use:   "catalog DIRECTORY",
		Short: "Every registered suite, or the ones named with --suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := generateCatalog(cmd.Context(), suite.DefaultCatalog(), names, a.settings(f))
			if err != nil {
				return err
			}
			return a.saveSuite(cmd, args[0], tasks, f.overwrite)
		},
	}
	f.register(cmd, 0)
	cmd.Flags().Lookup("n").Usage = "number of points per seed (0 keeps each suite's default)"
	cmd.Flags().StringSliceVar(&names, "suite", nil, "suites to generate (default all)")
	return cmd
}

func generateCatalog(ctx context.Context, c *suite.Catalog, names []string, s suite.Settings) ([]*task.Task, error) {
	if len(names) == 0 {
		return c.GenerateAll(ctx, s)
	}
	var all []*task.Task
	for _, name := range names {
		tasks, err := c.Generate(ctx, name, s)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}
