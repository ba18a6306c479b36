package simulator

import (
	"sort"

	"github.com/me/schedsim/internal/buffer"
	"github.com/me/schedsim/internal/processor"
	"github.com/me/schedsim/pkg/model"
)

// victim is a running task that may be evicted.
type victim struct {
	task *model.Task
	proc *processor.Processor
}

// victimCandidates lists running tasks by priority, highest first, ties in
// processor order.
func (s *Simulator) victimCandidates() []victim {
	busy := s.pool.Busy()
	out := make([]victim, 0, len(busy))
	for _, p := range busy {
		out = append(out, victim{task: p.Current(), proc: p})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].task.Priority > out[j].task.Priority })
	return out
}

// resolvePreemption places each request on the processor of the first
// candidate (in descending priority order) running strictly lower-priority
// work. The evicted task goes back to the buffer and is not considered again
// this tick. A request with no eligible victim returns to the buffer.
func (s *Simulator) resolvePreemption(requests []*model.Task) {
	victims := s.victimCandidates()
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].Priority > requests[j].Priority })

	for _, req := range requests {
		idx := -1
		for i, v := range victims {
			if v.task.Priority < req.Priority {
				idx = i
				break
			}
		}

		if idx < 0 {
			s.logger.Debug("no preemption victim, task returned to buffer", "task_id", req.ID, "priority", req.Priority, "time", s.time)
			s.readmit(req)
			continue
		}

		v := victims[idx]
		victims = append(victims[:idx], victims[idx+1:]...)

		evicted := v.proc.Evict()
		v.proc.Assign(req)
		s.counters.Preempted++
		s.counters.Dispatched++
		s.logger.Info("task preempted",
			"task_id", evicted.ID, "priority", evicted.Priority,
			"by_task_id", req.ID, "by_priority", req.Priority,
			"processor", v.proc.ID(), "time", s.time)
		s.readmit(evicted)
	}
}

// readmit returns a task to the buffer. Each request was taken from the
// buffer earlier in the same tick, so the slot its victim or itself goes
// back into is always free and the overflow branch cannot trigger today.
// It records a rejection rather than losing the task if that ever changes.
func (s *Simulator) readmit(t *model.Task) {
	if s.buffer.Admit(t) == buffer.Admitted {
		return
	}
	r := s.ledger.Record(t, s.time)
	s.logger.Warn("buffer overflow on re-admission", "task_id", t.ID, "reason", r.Message)
}
