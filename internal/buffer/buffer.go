// Package buffer holds arrived tasks waiting for a processor.
package buffer

import (
	"container/heap"
	"sort"

	"github.com/me/schedsim/pkg/model"
)

// AdmissionResult is the outcome of Buffer.Admit.
type AdmissionResult int

const (
	Admitted AdmissionResult = iota
	Overflow
)

func (r AdmissionResult) String() string {
	if r == Admitted {
		return "admitted"
	}
	return "overflow"
}

// entry orders tasks by priority (desc), then by admission sequence (asc).
type entry struct {
	task *model.Task
	seq  uint64
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority > h[j].task.Priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}

// Buffer is a bounded priority queue. Equal priorities leave in the order
// they were admitted; a re-admitted task counts as a new admission.
type Buffer struct {
	entries  entryHeap
	capacity int
	seq      uint64
}

// New creates an empty buffer holding at most capacity tasks.
func New(capacity int) *Buffer {
	return &Buffer{capacity: capacity}
}

// Admit inserts task if there is room. On Overflow the buffer is unchanged
// and the caller owns rejection accounting.
func (b *Buffer) Admit(task *model.Task) AdmissionResult {
	if len(b.entries) >= b.capacity {
		return Overflow
	}
	heap.Push(&b.entries, entry{task: task, seq: b.seq})
	b.seq++
	return Admitted
}

// TakeHighest removes and returns the highest-priority task.
func (b *Buffer) TakeHighest() (*model.Task, bool) {
	if len(b.entries) == 0 {
		return nil, false
	}
	e := heap.Pop(&b.entries).(entry)
	return e.task, true
}

func (b *Buffer) IsEmpty() bool { return len(b.entries) == 0 }

func (b *Buffer) Size() int { return len(b.entries) }

func (b *Buffer) Capacity() int { return b.capacity }

// Reset drops every entry and restarts the admission sequence.
func (b *Buffer) Reset() {
	b.entries = nil
	b.seq = 0
}

// Entries returns the buffered tasks in dispatch order.
func (b *Buffer) Entries() []*model.Task {
	sorted := make(entryHeap, len(b.entries))
	copy(sorted, b.entries)
	sort.Sort(sorted)
	out := make([]*model.Task, len(sorted))
	for i, e := range sorted {
		out[i] = e.task
	}
	return out
}
