package suite

import (
	"context"
	"fmt"
	"slices"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/task"
)

// Generator builds the tasks of one suite.
type Generator func(ctx context.Context, settings Settings) ([]*task.Task, error)

// Catalog is an ordered set of named suites.
type Catalog struct {
	names      []string
	generators map[string]Generator
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{generators: make(map[string]Generator)}
}

// DefaultCatalog registers the built-in suites: "student" and "spiral".
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.MustRegister("student", StudentSuite)
	c.MustRegister("spiral", func(ctx context.Context, settings Settings) ([]*task.Task, error) {
		return SpiralSuite(ctx, DefaultSpiralCorrelation, DefaultSpiralSpeeds, settings)
	})
	return c
}

// Register adds a suite. Names must be unique and non-empty.
func (c *Catalog) Register(name string, g Generator) error {
	if name == "" || g == nil {
		return fmt.Errorf("%w: suite needs a name and a generator", domain.ErrInvalidParameter)
	}
	if _, ok := c.generators[name]; ok {
		return fmt.Errorf("%w: suite %q already registered", domain.ErrInvalidParameter, name)
	}
	c.names = append(c.names, name)
	c.generators[name] = g
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(name string, g Generator) {
	if err := c.Register(name, g); err != nil {
		panic(err)
	}
}

// Names returns the suite names in registration order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// Generate runs the named suite.
func (c *Catalog) Generate(ctx context.Context, name string, settings Settings) ([]*task.Task, error) {
	g, ok := c.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown suite %q", domain.ErrInvalidParameter, name)
	}
	return g(ctx, settings)
}

// GenerateAll runs every suite in registration order and concatenates the
// tasks. It fails if two suites produce the same task id.
func (c *Catalog) GenerateAll(ctx context.Context, settings Settings) ([]*task.Task, error) {
	var all []*task.Task
	seen := make(map[string]string)
	for _, name := range c.names {
		tasks, err := c.Generate(ctx, name, settings)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %w", name, err)
		}
		for _, t := range tasks {
			if prev, dup := seen[t.TaskID()]; dup {
				return nil, fmt.Errorf("%w: task id %q produced by suites %s and %s",
					domain.ErrInvalidParameter, t.TaskID(), prev, name)
			}
			seen[t.TaskID()] = name
		}
		all = append(all, tasks...)
	}
	return all, nil
}
