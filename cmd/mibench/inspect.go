package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/mibench/internal/task"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect TASKDIR",
		Short: "Print a task's metadata and seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := task.Load(args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(struct {
				Metadata any     `yaml:"metadata"`
				Seeds    []int64 `yaml:"seeds,flow"`
			}{Metadata: t.Metadata(), Seeds: t.Seeds()})
			if err != nil {
				return fmt.Errorf("encode metadata: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			a.logger.Debug("task inspected", "task_id", t.TaskID())
			return err
		},
	}
}
