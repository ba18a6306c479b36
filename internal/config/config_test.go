package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/schedsim/pkg/model"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := `
simulation:
  processors: 5
  buffer_capacity: 3
  pace: 50ms
tasks:
  count: 8
  probabilities: [0.5, 0.25, 0.25]
  lambdas: [1, 2, 3]
  seed: 11
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Processors != 5 || cfg.Simulation.BufferCapacity != 3 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Simulation.Pace != 50*time.Millisecond {
		t.Errorf("pace = %v, want 50ms", cfg.Simulation.Pace)
	}
	if cfg.Simulation.TimeStep != 0.01 {
		t.Errorf("time_step should keep default 0.01, got %v", cfg.Simulation.TimeStep)
	}
	if cfg.Tasks.Count != 8 || len(cfg.Tasks.Lambdas) != 3 || cfg.Tasks.Seed != 11 {
		t.Errorf("tasks = %+v", cfg.Tasks)
	}
	if cfg.Tasks.ServiceTime != 0.5 {
		t.Errorf("service_time should keep default, got %v", cfg.Tasks.ServiceTime)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("simulation:\n  cpus: 4\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestValidate_CollectsAllSections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.BufferCapacity = 0
	cfg.Tasks.Probabilities = []float64{0.6, 0.6}
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *model.ConfigError", err)
	}
	for _, field := range []string{"simulation.buffer_capacity", "tasks.probabilities", "logging.level", "logging.format"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q missing %s", err, field)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.Pace = 10 * time.Millisecond
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got := DefaultConfig()
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Simulation != cfg.Simulation {
		t.Errorf("simulation = %+v, want %+v", got.Simulation, cfg.Simulation)
	}
}
