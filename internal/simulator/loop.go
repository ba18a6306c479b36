package simulator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/me/schedsim/pkg/model"
)

// Observer receives a snapshot after every tick. Implementations must not
// block for long; the loop waits for them.
type Observer interface {
	Observe(snap model.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap model.Snapshot)

func (f ObserverFunc) Observe(snap model.Snapshot) { f(snap) }

// Loop drives a Simulator until it halts or is stopped.
type Loop struct {
	sim       *Simulator
	observers []Observer
	logger    *slog.Logger

	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLoop creates a run loop for sim.
func NewLoop(sim *Simulator, logger *slog.Logger, observers ...Observer) *Loop {
	return &Loop{
		sim:       sim,
		observers: observers,
		logger:    logger.With("component", "loop", "run_id", sim.RunID()),
		stopCh:    make(chan struct{}),
	}
}

// Simulator returns the driven simulator.
func (l *Loop) Simulator() *Simulator { return l.sim }

// Start runs ticks until the simulator reaches a terminal state, Stop is
// called, or ctx is cancelled. Stop and cancellation take effect between
// ticks only. The returned report is always valid; the error is ctx.Err()
// when the run was cut short by the context.
func (l *Loop) Start(ctx context.Context) (model.Report, error) {
	pace := l.sim.Config().Pace
	l.logger.Info("simulation started",
		"tasks", l.sim.counters.Total,
		"processors", l.sim.Config().Processors,
		"buffer_capacity", l.sim.Config().BufferCapacity,
		"pace", pace)

	startedAt := time.Now().UTC()
	var ticker *time.Ticker
	if pace > 0 {
		ticker = time.NewTicker(pace)
		defer ticker.Stop()
	}

	var runErr error
	interrupted := false
	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info("simulation stopping (context cancelled)", "time", l.sim.Time())
			interrupted, runErr = true, err
			break
		}
		if l.stopped.Load() {
			l.logger.Info("simulation stopping (stop called)", "time", l.sim.Time())
			interrupted = true
			break
		}

		if l.sim.Tick().IsTerminal() {
			break
		}
		l.notify(l.sim.Snapshot())

		if ticker == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-l.stopCh:
		case <-ticker.C:
		}
	}

	l.notify(l.sim.Snapshot())

	report := l.sim.Report()
	report.Interrupted = interrupted
	report.StartedAt = startedAt
	report.FinishedAt = time.Now().UTC()
	return report, runErr
}

// Stop asks the loop to exit after the current tick. It never blocks and
// may be called any number of times, from any goroutine.
func (l *Loop) Stop() error {
	l.stopOnce.Do(func() {
		l.stopped.Store(true)
		close(l.stopCh)
	})
	return nil
}

func (l *Loop) notify(snap model.Snapshot) {
	for _, o := range l.observers {
		o.Observe(snap)
	}
}
