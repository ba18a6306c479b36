// Package tasksource generates the task population for a simulation run:
// uniform priorities, hyperexponential arrival delays and a fixed service time.
package tasksource

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/me/schedsim/pkg/model"
)

// Config describes the generated task population.
type Config struct {
	Count         int       `yaml:"count" json:"count"`
	Priorities    int       `yaml:"priorities" json:"priorities"`
	ServiceTime   float64   `yaml:"service_time" json:"service_time"`
	Probabilities []float64 `yaml:"probabilities" json:"probabilities"`
	Lambdas       []float64 `yaml:"lambdas" json:"lambdas"`
	Seed          uint64    `yaml:"seed" json:"seed"` // 0 picks a random seed
}

// DefaultConfig returns the population used by the reference simulator.
func DefaultConfig() Config {
	return Config{
		Count:         20,
		Priorities:    3,
		ServiceTime:   0.5,
		Probabilities: []float64{0.8, 0.2},
		Lambdas:       []float64{0.5, 1.2},
	}
}

// Validate checks the distribution parameters. Probabilities must match
// lambdas in length and sum to 1.0 within numpy's isclose tolerance.
func (c Config) Validate() error {
	var details []model.FieldError
	if c.Count < 0 {
		details = append(details, model.FieldError{Field: "tasks.count", Message: "must not be negative"})
	}
	if c.Priorities < 1 {
		details = append(details, model.FieldError{Field: "tasks.priorities", Message: "must be at least 1"})
	}
	if c.ServiceTime <= 0 {
		details = append(details, model.FieldError{Field: "tasks.service_time", Message: "must be positive"})
	}
	if len(c.Probabilities) == 0 {
		details = append(details, model.FieldError{Field: "tasks.probabilities", Message: "at least one component is required"})
	}
	if len(c.Probabilities) != len(c.Lambdas) {
		details = append(details, model.FieldError{
			Field:   "tasks.lambdas",
			Message: fmt.Sprintf("have %d rates for %d probabilities", len(c.Lambdas), len(c.Probabilities)),
		})
	}
	sum := 0.0
	for i, p := range c.Probabilities {
		if p < 0 || p > 1 {
			details = append(details, model.FieldError{Field: fmt.Sprintf("tasks.probabilities[%d]", i), Message: "must be within [0, 1]"})
		}
		sum += p
	}
	if len(c.Probabilities) > 0 && math.Abs(sum-1.0) > 1e-8+1e-5 {
		details = append(details, model.FieldError{Field: "tasks.probabilities", Message: fmt.Sprintf("must sum to 1.0, got %g", sum)})
	}
	for i, l := range c.Lambdas {
		if l <= 0 {
			details = append(details, model.FieldError{Field: fmt.Sprintf("tasks.lambdas[%d]", i), Message: "must be positive"})
		}
	}
	if err := model.NewConfigError(details...); err != nil {
		return err
	}
	return nil
}

// Generator produces tasks from a validated Config.
type Generator struct {
	cfg       Config
	precision int
	seed      uint64
	rng       *rand.Rand
}

// NewGenerator validates cfg and returns a generator. Arrival delays are
// rounded to precision decimal places.
func NewGenerator(cfg Config, precision int) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		cfg:       cfg,
		precision: precision,
		seed:      seed,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Seed returns the seed in use, including one picked at random.
func (g *Generator) Seed() uint64 { return g.seed }

// Generate returns Count tasks with ids 0..Count-1.
func (g *Generator) Generate() []*model.Task {
	tasks := make([]*model.Task, g.cfg.Count)
	for i := range tasks {
		tasks[i] = &model.Task{
			ID:          i,
			Priority:    g.rng.IntN(g.cfg.Priorities) + 1,
			Arrival:     g.arrivalDelay(),
			ServiceTime: g.cfg.ServiceTime,
		}
	}
	return tasks
}

// arrivalDelay samples the hyperexponential mixture: pick a component by its
// probability, then draw an exponential delay with that component's rate.
func (g *Generator) arrivalDelay() float64 {
	u := g.rng.Float64()
	idx := len(g.cfg.Probabilities) - 1
	acc := 0.0
	for i, p := range g.cfg.Probabilities {
		acc += p
		if u < acc {
			idx = i
			break
		}
	}
	return model.Round(g.rng.ExpFloat64()/g.cfg.Lambdas[idx], g.precision)
}
