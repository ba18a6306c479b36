package model

import (
	"encoding/json"
	"time"
)

// ProcessorSnapshot is the read-only view of one processor after a tick.
type ProcessorSnapshot struct {
	ID        int     `json:"id"`
	Task      *Task   `json:"task,omitempty"`
	Remaining float64 `json:"remaining"`
}

// Counters are cumulative per-run totals.
type Counters struct {
	Total      int `json:"total"`
	Admitted   int `json:"admitted"`
	Dispatched int `json:"dispatched"`
	Completed  int `json:"completed"`
	Preempted  int `json:"preempted"`
	Rejected   int `json:"rejected"`
}

// Snapshot is a deep copy of simulator state, safe to hand to renderers.
type Snapshot struct {
	RunID          string              `json:"run_id"`
	Tick           int                 `json:"tick"`
	Time           float64             `json:"time"`
	State          RunState            `json:"state"`
	Processors     []ProcessorSnapshot `json:"processors"`
	Buffer         []Task              `json:"buffer"`
	BufferCapacity int                 `json:"buffer_capacity"`
	Pending        []Task              `json:"pending"`
	Rejections     []Rejection         `json:"rejections"`
	Counters       Counters            `json:"counters"`
}

// BusyProcessors returns how many processors hold a task.
func (s *Snapshot) BusyProcessors() int {
	n := 0
	for _, p := range s.Processors {
		if p.Task != nil {
			n++
		}
	}
	return n
}

// Report summarises a finished (or interrupted) run.
type Report struct {
	RunID       string      `json:"run_id"`
	State       RunState    `json:"state"`
	Interrupted bool        `json:"interrupted"`
	Time        float64     `json:"time"`
	Ticks       int         `json:"ticks"`
	Counters    Counters    `json:"counters"`
	Rejections  []Rejection `json:"rejections,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
}

// RejectedIDs returns the ids of rejected tasks in rejection order.
func (r *Report) RejectedIDs() []int {
	ids := make([]int, len(r.Rejections))
	for i, rej := range r.Rejections {
		ids[i] = rej.TaskID
	}
	return ids
}

// Run is an archived report together with the parameters that produced it.
type Run struct {
	Report
	Params json.RawMessage `json:"params,omitempty"`
}
