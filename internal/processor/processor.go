// Package processor models single-slot execution units counting down
// simulated service time.
package processor

import (
	"fmt"

	"github.com/me/schedsim/pkg/model"
)

// Processor holds at most one task. It is free exactly when remaining is zero.
type Processor struct {
	id        int
	task      *model.Task
	remaining float64
}

// New creates a free processor.
func New(id int) *Processor {
	return &Processor{id: id}
}

func (p *Processor) ID() int { return p.id }

// IsFree reports whether no task is held.
func (p *Processor) IsFree() bool { return p.task == nil }

// Current returns the held task, or nil.
func (p *Processor) Current() *model.Task { return p.task }

// Remaining returns the service time left on the held task.
func (p *Processor) Remaining() float64 { return p.remaining }

// Assign starts task with its full service time. Assigning to a busy
// processor is a caller bug.
func (p *Processor) Assign(task *model.Task) {
	if p.task != nil {
		panic(fmt.Sprintf("processor %d: assign task %d while running task %d", p.id, task.ID, p.task.ID))
	}
	if task.ServiceTime <= 0 {
		panic(fmt.Sprintf("processor %d: task %d has non-positive service time", p.id, task.ID))
	}
	p.task = task
	p.remaining = task.ServiceTime
}

// Advance consumes delta of service time and returns the task if it completed.
func (p *Processor) Advance(delta float64, precision int) *model.Task {
	if p.task == nil {
		return nil
	}
	p.remaining = model.Round(p.remaining-delta, precision)
	if p.remaining > 0 {
		return nil
	}
	done := p.task
	p.task = nil
	p.remaining = 0
	return done
}

// Evict removes the held task without completing it.
func (p *Processor) Evict() *model.Task {
	t := p.task
	p.task = nil
	p.remaining = 0
	return t
}

// Snapshot returns a read-only copy of the processor state.
func (p *Processor) Snapshot() model.ProcessorSnapshot {
	s := model.ProcessorSnapshot{ID: p.id, Remaining: p.remaining}
	if p.task != nil {
		t := *p.task
		s.Task = &t
	}
	return s
}

func (p *Processor) String() string {
	return fmt.Sprintf("Processor(id=%d, task=%v, remaining=%g)", p.id, p.task, p.remaining)
}
