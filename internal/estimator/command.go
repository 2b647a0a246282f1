package estimator

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/taskdir"
)

// Placeholders substituted in command arguments.
const (
	PlaceholderSamples = "{samples}"
	PlaceholderDimX    = "{dim_x}"
	PlaceholderDimY    = "{dim_y}"
)

const commandWaitDelay = 2 * time.Second

// Command is an estimator implemented by an external program. For every
// estimate the samples are written to a CSV file with columns
// seed,X1..,Y1.. and the program is started with the placeholders in its
// arguments replaced. The last non-empty line of its standard output must be
// the estimate.
type Command struct {
	id     string
	argv   []string
	params map[string]any
}

// NewCommand creates a command estimator. argv[0] is the program.
func NewCommand(id string, argv []string, params map[string]any) (*Command, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: command estimator needs an id", domain.ErrInvalidParameter)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: command estimator %s needs a program", domain.ErrInvalidParameter, id)
	}
	p := maps.Clone(params)
	if p == nil {
		p = make(map[string]any, 1)
	}
	p["command"] = strings.Join(argv, " ")
	return &Command{id: id, argv: append([]string(nil), argv...), params: p}, nil
}

// ParseCommand splits a command line on whitespace. Quoting is not supported;
// wrap complex invocations in a script.
func ParseCommand(line string) []string { return strings.Fields(line) }

func (c *Command) ID() string { return c.id }

func (c *Command) Params() map[string]any { return maps.Clone(c.params) }

// Estimate runs the program on the samples.
func (c *Command) Estimate(ctx context.Context, x, y [][]float64) (float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, fmt.Errorf("need paired samples, got %d and %d points", len(x), len(y))
	}
	dir, err := os.MkdirTemp("", "mibench-"+c.id+"-*")
	if err != nil {
		return 0, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	samples := filepath.Join(dir, taskdir.SamplesFile)
	if err := writeSamples(samples, x, y); err != nil {
		return 0, err
	}

	replacer := strings.NewReplacer(
		PlaceholderSamples, samples,
		PlaceholderDimX, strconv.Itoa(len(x[0])),
		PlaceholderDimY, strconv.Itoa(len(y[0])),
	)
	args := make([]string, len(c.argv))
	for i, a := range c.argv {
		args[i] = replacer.Replace(a)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherited the output pipes must not hold Wait open.
	cmd.WaitDelay = commandWaitDelay
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%s: %w", c.id, ctx.Err())
		}
		return 0, fmt.Errorf("%s: %w: %s", c.id, err, strings.TrimSpace(stderr.String()))
	}
	return parseEstimate(stdout.String())
}

func writeSamples(path string, x, y [][]float64) error {
	tbl := taskdir.NewTable(len(x[0]), len(y[0]))
	row := make([]float64, 0, len(x[0])+len(y[0]))
	for i := range x {
		row = append(append(row[:0], x[i]...), y[i]...)
		tbl.Append(0, row)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create samples file: %w", err)
	}
	if err := tbl.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write samples file: %w", err)
	}
	return f.Close()
}

func parseEstimate(out string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return 0, fmt.Errorf("estimator printed nothing")
	}
	v, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("parse estimate %q: %w", last, err)
	}
	return v, nil
}
