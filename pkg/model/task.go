package model

import (
	"fmt"
	"math"
)

// Task is one unit of simulated work. Priority and ServiceTime are fixed at
// creation; Arrival counts down to zero as simulated time advances.
type Task struct {
	ID          int     `json:"id" yaml:"id"`
	Priority    int     `json:"priority" yaml:"priority"`
	Arrival     float64 `json:"arrival" yaml:"arrival"`
	ServiceTime float64 `json:"service_time" yaml:"service_time"`
}

// Age moves the task delta closer to arrival. Arrival never goes below zero.
func (t *Task) Age(delta float64, precision int) {
	if t.Arrival-delta > 0 {
		t.Arrival = Round(t.Arrival-delta, precision)
		return
	}
	t.Arrival = 0
}

// Arrived reports whether the task's arrival countdown has reached zero.
func (t *Task) Arrived() bool {
	return t.Arrival == 0
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(id=%d, priority=%d, arrival=%g, service_time=%g)",
		t.ID, t.Priority, t.Arrival, t.ServiceTime)
}

// Round rounds x to the given number of decimal places. All simulated time
// arithmetic goes through Round so drift cannot build up over many ticks.
func Round(x float64, precision int) float64 {
	if precision < 0 {
		return x
	}
	p := math.Pow10(precision)
	return math.Round(x*p) / p
}

// CloneTasks returns value copies of tasks, preserving order.
func CloneTasks(tasks []*Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}
