package results

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/ahrav/mibench/internal/domain"
)

// Summary aggregates one estimator's runs on one task.
type Summary struct {
	TaskID        string  `json:"task_id"`
	EstimatorID   string  `json:"estimator_id"`
	Runs          int     `json:"runs"`
	MeanEstimate  float64 `json:"mean_estimate"`
	StdEstimate   float64 `json:"std_estimate"`
	MeanAbsError  float64 `json:"mean_absolute_error"`
	MeanTimeInSec float64 `json:"mean_time_in_seconds,omitempty"`
}

// Summarize groups results by (task, estimator) and compares each group with
// the ground truth returned by miTrue. Groups are ordered by task then
// estimator id.
func Summarize(rs []domain.RunResult, miTrue func(taskID string) float64) []Summary {
	type key struct{ task, estimator string }
	groups := make(map[key][]domain.RunResult)
	for _, r := range rs {
		k := key{r.TaskID, r.EstimatorID}
		groups[k] = append(groups[k], r)
	}

	out := make([]Summary, 0, len(groups))
	for k, g := range groups {
		estimates := make([]float64, len(g))
		var absErr, seconds float64
		var timed int
		truth := miTrue(k.task)
		for i, r := range g {
			estimates[i] = r.MIEstimate
			absErr += math.Abs(r.MIEstimate - truth)
			if r.TimeInSeconds != nil {
				seconds += *r.TimeInSeconds
				timed++
			}
		}
		mean, std := stat.MeanStdDev(estimates, nil)
		if len(g) < 2 {
			std = 0
		}
		s := Summary{
			TaskID:       k.task,
			EstimatorID:  k.estimator,
			Runs:         len(g),
			MeanEstimate: mean,
			StdEstimate:  std,
			MeanAbsError: absErr / float64(len(g)),
		}
		if timed > 0 {
			s.MeanTimeInSec = seconds / float64(timed)
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return cmp.Or(cmp.Compare(a.TaskID, b.TaskID), cmp.Compare(a.EstimatorID, b.EstimatorID))
	})
	return out
}
