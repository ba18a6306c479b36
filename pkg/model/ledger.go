package model

import "fmt"

// Rejection records one task dropped because the buffer was full.
type Rejection struct {
	TaskID   int     `json:"task_id"`
	Priority int     `json:"priority"`
	Time     float64 `json:"time"`
	Message  string  `json:"message"`
}

// Ledger accumulates rejections over a run. It only grows.
type Ledger struct {
	entries []Rejection
}

// Record appends a rejection for task at simulated time now and returns it.
func (l *Ledger) Record(task *Task, now float64) Rejection {
	r := Rejection{
		TaskID:   task.ID,
		Priority: task.Priority,
		Time:     now,
		Message:  fmt.Sprintf("buffer full at t=%g: task %d (priority %d) rejected", now, task.ID, task.Priority),
	}
	l.entries = append(l.entries, r)
	return r
}

// Count returns the number of rejected tasks.
func (l *Ledger) Count() int {
	return len(l.entries)
}

// IDs returns the rejected task ids in rejection order.
func (l *Ledger) IDs() []int {
	ids := make([]int, len(l.entries))
	for i, e := range l.entries {
		ids[i] = e.TaskID
	}
	return ids
}

// Messages returns the human-readable status log.
func (l *Ledger) Messages() []string {
	msgs := make([]string, len(l.entries))
	for i, e := range l.entries {
		msgs[i] = e.Message
	}
	return msgs
}

// Entries returns a copy of all rejections.
func (l *Ledger) Entries() []Rejection {
	out := make([]Rejection, len(l.entries))
	copy(out, l.entries)
	return out
}
