package tasksource

import (
	"errors"
	"strings"
	"testing"

	"github.com/me/schedsim/pkg/model"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"length mismatch", func(c *Config) { c.Lambdas = []float64{1} }, "tasks.lambdas"},
		{"sum below one", func(c *Config) { c.Probabilities = []float64{0.5, 0.4} }, "must sum to 1.0"},
		{"sum within tolerance", func(c *Config) { c.Probabilities = []float64{0.7, 0.3000000001} }, ""},
		{"zero lambda", func(c *Config) { c.Lambdas = []float64{0, 1} }, "tasks.lambdas[0]"},
		{"no priorities", func(c *Config) { c.Priorities = 0 }, "tasks.priorities"},
		{"zero service time", func(c *Config) { c.ServiceTime = 0 }, "tasks.service_time"},
		{"empty mixture", func(c *Config) { c.Probabilities = nil; c.Lambdas = nil }, "at least one component"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			var cfgErr *model.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *model.ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewGenerator_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Probabilities = []float64{0.9, 0.9}
	if _, err := NewGenerator(cfg, 4); err == nil {
		t.Fatal("expected configuration error before generation")
	}
}

func TestGenerator_Generate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 200
	cfg.Priorities = 4
	cfg.Seed = 42

	gen, err := NewGenerator(cfg, 4)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	tasks := gen.Generate()
	if len(tasks) != 200 {
		t.Fatalf("len = %d, want 200", len(tasks))
	}

	seen := map[int]bool{}
	for i, task := range tasks {
		if task.ID != i {
			t.Errorf("task %d has id %d", i, task.ID)
		}
		if task.Priority < 1 || task.Priority > 4 {
			t.Errorf("task %d priority %d out of [1,4]", i, task.Priority)
		}
		seen[task.Priority] = true
		if task.Arrival < 0 {
			t.Errorf("task %d has negative arrival %v", i, task.Arrival)
		}
		if task.Arrival != model.Round(task.Arrival, 4) {
			t.Errorf("task %d arrival %v not rounded to 4 places", i, task.Arrival)
		}
		if task.ServiceTime != cfg.ServiceTime {
			t.Errorf("task %d service time %v, want %v", i, task.ServiceTime, cfg.ServiceTime)
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected all 4 priority classes across 200 tasks, saw %v", seen)
	}
}

func TestGenerator_SeedIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7

	a, _ := NewGenerator(cfg, 4)
	b, _ := NewGenerator(cfg, 4)
	ta, tb := a.Generate(), b.Generate()
	for i := range ta {
		if *ta[i] != *tb[i] {
			t.Fatalf("task %d differs: %v vs %v", i, ta[i], tb[i])
		}
	}
}

func TestGenerator_SingleComponentMean(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 5000
	cfg.Probabilities = []float64{1}
	cfg.Lambdas = []float64{2}
	cfg.Seed = 3

	gen, err := NewGenerator(cfg, 6)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	sum := 0.0
	for _, task := range gen.Generate() {
		sum += task.Arrival
	}
	mean := sum / float64(cfg.Count)
	if mean < 0.4 || mean > 0.6 {
		t.Errorf("mean arrival = %v, want close to 1/lambda = 0.5", mean)
	}
}

func TestGenerator_Seed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11
	gen, _ := NewGenerator(cfg, 4)
	if gen.Seed() != 11 {
		t.Errorf("Seed() = %d, want 11", gen.Seed())
	}

	cfg.Seed = 0
	random, _ := NewGenerator(cfg, 4)
	replay := cfg
	replay.Seed = random.Seed()
	again, _ := NewGenerator(replay, 4)

	ta, tb := random.Generate(), again.Generate()
	for i := range ta {
		if *ta[i] != *tb[i] {
			t.Fatalf("replaying seed %d: task %d differs", replay.Seed, i)
		}
	}
}
