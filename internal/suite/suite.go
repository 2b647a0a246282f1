// Package suite assembles benchmark tasks into suites: parameter sweeps over
// sampler families, a catalog of named suites, and saving a suite as one task
// directory per task id.
package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/task"
	"github.com/ahrav/mibench/internal/taskdir"
)

// DefaultStudentSamples is the number of points per seed in the Student-t suite.
const DefaultStudentSamples = 5000

// Settings are shared by every suite generator.
type Settings struct {
	// Seeds is the number of seeds; tasks use seeds 0..Seeds-1.
	Seeds int

	// Samples overrides the suite's default points per seed when positive.
	Samples int

	// TaskOptions are passed to task.Generate for every task.
	TaskOptions []task.Option
}

func (s Settings) samples(def int) int {
	if s.Samples > 0 {
		return s.Samples
	}
	return def
}

// SeedRange returns the seeds 0..n-1.
func SeedRange(n int) []int64 {
	seeds := make([]int64, max(n, 0))
	for i := range seeds {
		seeds[i] = int64(i)
	}
	return seeds
}

// SaveAll writes every task to dir/<task id>.
// Returns an error wrapping domain.ErrInvalidParameter if two tasks share an
// id; nothing is written in that case.
func SaveAll(dir string, tasks []*task.Task, existOK bool) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.TaskID()]; dup {
			return fmt.Errorf("%w: duplicate task id %q", domain.ErrInvalidParameter, t.TaskID())
		}
		seen[t.TaskID()] = struct{}{}
	}
	for _, t := range tasks {
		if err := t.Save(filepath.Join(dir, t.TaskID()), existOK); err != nil {
			return fmt.Errorf("save task %s: %w", t.TaskID(), err)
		}
	}
	return nil
}

// LoadAll loads every task directory directly below dir, ordered by name.
// Entries that are not task directories are skipped.
func LoadAll(dir string) ([]*task.Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suite directory: %w", err)
	}
	var tasks []*task.Task
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !taskdir.New(path).HoldsTask() {
			continue
		}
		t, err := task.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load task %s: %w", e.Name(), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
