// Package metrics exports simulator progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/me/schedsim/pkg/model"
)

const namespace = "schedsim"

// Collector turns snapshots into Prometheus series. It owns a private
// registry so several collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	ticks      prometheus.Counter
	admitted   prometheus.Counter
	dispatched prometheus.Counter
	completed  prometheus.Counter
	preempted  prometheus.Counter
	rejected   prometheus.Counter
	simTime    prometheus.Gauge
	bufferSize prometheus.Gauge
	busy       prometheus.Gauge
	pending    prometheus.Gauge
	terminal   *prometheus.GaugeVec

	mu   sync.Mutex
	last map[string]model.Counters // per run id
	tick map[string]int
}

// NewCollector registers every schedsim metric on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total", Help: "Simulation ticks executed.",
		}),
		admitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_admitted_total", Help: "Tasks admitted into the buffer on arrival.",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_dispatched_total", Help: "Tasks placed on a processor, including by preemption.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_completed_total", Help: "Tasks that consumed their full service time.",
		}),
		preempted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_preempted_total", Help: "Running tasks evicted by higher-priority work.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_rejected_total", Help: "Tasks dropped because the buffer was full.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "simulated_time", Help: "Current simulated time of the latest run.",
		}),
		bufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "buffer_size", Help: "Tasks waiting in the buffer.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "processors_busy", Help: "Processors holding a task.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "tasks_pending", Help: "Tasks that have not yet arrived or been admitted.",
		}),
		terminal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "runs_finished", Help: "Finished runs by terminal state.",
		}, []string{"state"}),
		last: make(map[string]model.Counters),
		tick: make(map[string]int),
	}
	c.registry.MustRegister(
		c.ticks, c.admitted, c.dispatched, c.completed, c.preempted, c.rejected,
		c.simTime, c.bufferSize, c.busy, c.pending, c.terminal,
	)
	return c
}

// Observe updates gauges and adds counter deltas since the previous
// snapshot of the same run. Repeated snapshots of one tick are ignored.
func (c *Collector) Observe(snap model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevTick, seen := c.tick[snap.RunID]
	if seen && snap.Tick == prevTick {
		return
	}
	prev := c.last[snap.RunID]
	cur := snap.Counters

	c.ticks.Add(float64(snap.Tick - prevTick))
	c.admitted.Add(float64(cur.Admitted - prev.Admitted))
	c.dispatched.Add(float64(cur.Dispatched - prev.Dispatched))
	c.completed.Add(float64(cur.Completed - prev.Completed))
	c.preempted.Add(float64(cur.Preempted - prev.Preempted))
	c.rejected.Add(float64(cur.Rejected - prev.Rejected))

	c.simTime.Set(snap.Time)
	c.bufferSize.Set(float64(len(snap.Buffer)))
	c.busy.Set(float64(snap.BusyProcessors()))
	c.pending.Set(float64(len(snap.Pending)))

	if snap.State.IsTerminal() {
		c.terminal.WithLabelValues(snap.State.String()).Inc()
	}

	c.last[snap.RunID] = cur
	c.tick[snap.RunID] = snap.Tick
}

// Registry exposes the underlying registry, e.g. for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
