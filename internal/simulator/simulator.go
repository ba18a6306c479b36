// Package simulator runs the tick-driven scheduling model: arrivals enter a
// bounded priority buffer, buffered tasks are dispatched to free processors,
// and a task that finds every processor busy may preempt lower-priority work.
//
// A tick executes, in order:
//
//  1. arrival aging and admission (at most AdmissionCap arrivals per tick;
//     overflow is rejected into the ledger)
//  2. dispatch to free processors, or a single preemption request when none is free
//  3. preemption resolution against the running tasks
//  4. processor countdown
//  5. termination check
//
// Reordering these steps changes simulated outcomes.
package simulator

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/me/schedsim/internal/buffer"
	"github.com/me/schedsim/internal/processor"
	"github.com/me/schedsim/pkg/model"
)

// ErrSimulationFailed is returned by FailureError when a run hit the time
// limit with work still in flight.
var ErrSimulationFailed = errors.New("simulation failed")

// Simulator owns the pending pool, buffer and processors for one run. It is
// not safe for concurrent use; observers only ever see snapshots.
type Simulator struct {
	cfg    Config
	runID  string
	logger *slog.Logger

	pending  []*model.Task
	buffer   *buffer.Buffer
	pool     *processor.Pool
	ledger   model.Ledger
	counters model.Counters

	time  float64
	tick  int
	state model.RunState
}

// New validates cfg and creates a simulator over a private copy of tasks.
func New(cfg Config, tasks []*model.Task, logger *slog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pending := make([]*model.Task, 0, len(tasks))
	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return nil, model.NewConfigError(model.FieldError{Field: "tasks", Message: fmt.Sprintf("duplicate task id %d", t.ID)})
		}
		if t.ServiceTime <= 0 {
			return nil, model.NewConfigError(model.FieldError{Field: "tasks", Message: fmt.Sprintf("task %d has non-positive service time %g", t.ID, t.ServiceTime)})
		}
		seen[t.ID] = true
		task := *t
		pending = append(pending, &task)
	}

	runID := "run_" + uuid.New().String()
	return &Simulator{
		cfg:      cfg,
		runID:    runID,
		logger:   logger.With("component", "simulator", "run_id", runID),
		pending:  pending,
		buffer:   buffer.New(cfg.BufferCapacity),
		pool:     processor.NewPool(cfg.Processors),
		counters: model.Counters{Total: len(pending)},
		state:    model.RunStateRunning,
	}, nil
}

func (s *Simulator) RunID() string { return s.runID }

func (s *Simulator) Config() Config { return s.cfg }

// Time returns the current simulated time.
func (s *Simulator) Time() float64 { return s.time }

// Ticks returns the number of ticks executed.
func (s *Simulator) Ticks() int { return s.tick }

func (s *Simulator) State() model.RunState { return s.state }

// Tick runs one full pass of the control loop and returns the resulting
// state. Ticking a halted simulator does nothing.
func (s *Simulator) Tick() model.RunState {
	if s.state.IsTerminal() {
		return s.state
	}

	s.tick++
	s.time = model.Round(s.time+s.cfg.TimeStep, s.cfg.Precision)

	// Phase 1: age pending tasks and admit arrivals into the buffer.
	s.apply(s.handleArrivals())

	// Phase 2+3: dispatch to free processors, or preempt when none is free.
	s.apply(s.handleBuffer())

	// Phase 4: count down service time on every busy processor.
	for _, done := range s.pool.Advance(s.cfg.TimeStep, s.cfg.Precision) {
		s.counters.Completed++
		s.logger.Debug("task completed", "task_id", done.ID, "time", s.time)
	}

	// Phase 5: termination.
	next := s.evaluate()
	if next != s.state {
		if !s.state.CanTransitionTo(next) {
			panic(fmt.Sprintf("simulator: illegal state transition %s -> %s", s.state, next))
		}
		s.state = next
		s.logTerminal()
	}
	return s.state
}

// apply acts on a phase result.
func (s *Simulator) apply(sig signal) {
	switch sig := sig.(type) {
	case noOp:
	case arrivals:
		s.admit(sig.tasks)
	case dispatch:
		procs := s.pool.All()
		for _, a := range sig.assignments {
			procs[a.processor].Assign(a.task)
			s.counters.Dispatched++
			s.logger.Debug("task dispatched", "task_id", a.task.ID, "processor", a.processor, "time", s.time)
		}
	case preemptRequest:
		s.resolvePreemption(sig.tasks)
	default:
		panic(fmt.Sprintf("simulator: unhandled signal %T", sig))
	}
}

// handleArrivals ages every pending task by one step and selects, by
// priority, up to AdmissionCap of those that have arrived.
func (s *Simulator) handleArrivals() signal {
	if len(s.pending) == 0 {
		return noOp{}
	}

	var ready []*model.Task
	for _, t := range s.pending {
		t.Age(s.cfg.TimeStep, s.cfg.Precision)
		if t.Arrived() {
			ready = append(ready, t)
		}
	}
	if len(ready) == 0 {
		return noOp{}
	}

	sort.SliceStable(ready, func(i, j int) bool { return ready[i].Priority > ready[j].Priority })
	if len(ready) > s.cfg.AdmissionCap {
		ready = ready[:s.cfg.AdmissionCap]
	}
	return arrivals{tasks: ready}
}

// admit moves arrived tasks into the buffer. A task that does not fit is
// rejected and dropped from the pending pool; it is never retried.
func (s *Simulator) admit(tasks []*model.Task) {
	for _, t := range tasks {
		if s.buffer.Admit(t) == buffer.Admitted {
			s.counters.Admitted++
			s.logger.Debug("task admitted", "task_id", t.ID, "priority", t.Priority, "time", s.time)
		} else {
			r := s.ledger.Record(t, s.time)
			s.logger.Info("task rejected", "task_id", t.ID, "priority", t.Priority, "time", s.time, "reason", r.Message)
		}
		s.removePending(t)
	}
}

func (s *Simulator) removePending(t *model.Task) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// handleBuffer pairs buffered tasks with free processors. When every
// processor is busy only the head of the buffer is taken, as a preemption
// request.
func (s *Simulator) handleBuffer() signal {
	if s.buffer.IsEmpty() {
		return noOp{}
	}

	free := s.pool.Free()
	if len(free) == 0 {
		task, _ := s.buffer.TakeHighest()
		return preemptRequest{tasks: []*model.Task{task}}
	}

	var out []assignment
	for _, p := range free {
		task, ok := s.buffer.TakeHighest()
		if !ok {
			break
		}
		out = append(out, assignment{task: task, processor: p.ID()})
	}
	return dispatch{assignments: out}
}

// evaluate computes the run state after a tick.
func (s *Simulator) evaluate() model.RunState {
	if s.time >= s.cfg.MaxRunTime && s.pool.AnyBusy() {
		return model.RunStateFailure
	}
	if len(s.pending) == 0 && s.buffer.IsEmpty() && s.pool.AllFree() {
		return model.RunStateSuccess
	}
	return model.RunStateRunning
}

func (s *Simulator) logTerminal() {
	switch s.state {
	case model.RunStateSuccess:
		s.logger.Info("no tasks left, simulation finished",
			"time", s.time, "ticks", s.tick, "completed", s.counters.Completed, "rejected", s.ledger.Count())
	case model.RunStateFailure:
		s.logger.Warn("time limit reached with processors still busy",
			"time", s.time, "max_run_time", s.cfg.MaxRunTime, "rejected", s.ledger.Count())
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Simulator) Snapshot() model.Snapshot {
	entries := s.buffer.Entries()
	counters := s.counters
	counters.Rejected = s.ledger.Count()
	return model.Snapshot{
		RunID:          s.runID,
		Tick:           s.tick,
		Time:           s.time,
		State:          s.state,
		Processors:     s.pool.Snapshot(),
		Buffer:         model.CloneTasks(entries),
		BufferCapacity: s.buffer.Capacity(),
		Pending:        model.CloneTasks(s.pending),
		Rejections:     s.ledger.Entries(),
		Counters:       counters,
	}
}

// Report summarises the run so far. Wall-clock fields are left to the caller.
func (s *Simulator) Report() model.Report {
	counters := s.counters
	counters.Rejected = s.ledger.Count()
	return model.Report{
		RunID:      s.runID,
		State:      s.state,
		Time:       s.time,
		Ticks:      s.tick,
		Counters:   counters,
		Rejections: s.ledger.Entries(),
	}
}

// FailureError returns an error wrapping ErrSimulationFailed for a failed
// report, and nil otherwise.
func FailureError(r model.Report) error {
	if r.State != model.RunStateFailure {
		return nil
	}
	return fmt.Errorf("%w: time limit reached at t=%g with work in flight, %d task(s) rejected",
		ErrSimulationFailed, r.Time, r.Counters.Rejected)
}
