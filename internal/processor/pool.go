package processor

import "github.com/me/schedsim/pkg/model"

// Pool is the fixed set of processors for one run.
type Pool struct {
	processors []*Processor
}

// NewPool creates n free processors with ids 0..n-1.
func NewPool(n int) *Pool {
	ps := make([]*Processor, n)
	for i := range ps {
		ps[i] = New(i)
	}
	return &Pool{processors: ps}
}

// All returns the processors in id order.
func (p *Pool) All() []*Processor { return p.processors }

func (p *Pool) Len() int { return len(p.processors) }

// Free returns the free processors in id order.
func (p *Pool) Free() []*Processor {
	var free []*Processor
	for _, proc := range p.processors {
		if proc.IsFree() {
			free = append(free, proc)
		}
	}
	return free
}

// Busy returns the processors holding a task, in id order.
func (p *Pool) Busy() []*Processor {
	var busy []*Processor
	for _, proc := range p.processors {
		if !proc.IsFree() {
			busy = append(busy, proc)
		}
	}
	return busy
}

// AnyBusy reports whether at least one processor holds a task.
func (p *Pool) AnyBusy() bool {
	for _, proc := range p.processors {
		if !proc.IsFree() {
			return true
		}
	}
	return false
}

// AllFree reports whether every processor is idle.
func (p *Pool) AllFree() bool { return !p.AnyBusy() }

// Advance moves every processor forward by delta and returns completed tasks.
func (p *Pool) Advance(delta float64, precision int) []*model.Task {
	var done []*model.Task
	for _, proc := range p.processors {
		if t := proc.Advance(delta, precision); t != nil {
			done = append(done, t)
		}
	}
	return done
}

// Snapshot copies every processor's state.
func (p *Pool) Snapshot() []model.ProcessorSnapshot {
	out := make([]model.ProcessorSnapshot, len(p.processors))
	for i, proc := range p.processors {
		out[i] = proc.Snapshot()
	}
	return out
}
