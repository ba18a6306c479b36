// Package render draws simulation snapshots as plain text for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/me/schedsim/pkg/model"
)

const clearScreen = "\033[H\033[2J"

// Renderer writes one screen per snapshot.
type Renderer struct {
	mu    sync.Mutex
	w     io.Writer
	clear bool
}

// New returns a Renderer writing to w. With clearEach set every screen starts
// with an ANSI clear sequence so the terminal shows only the latest tick.
func New(w io.Writer, clearEach bool) *Renderer {
	return &Renderer{w: w, clear: clearEach}
}

// Observe renders snap. Write errors are ignored; a broken terminal must not
// stop the simulation.
func (r *Renderer) Observe(snap model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clear {
		io.WriteString(r.w, clearScreen)
	}
	io.WriteString(r.w, Format(snap))
}

// Format renders a snapshot as a screen of text.
func Format(snap model.Snapshot) string {
	var b strings.Builder

	if len(snap.Pending) == 0 {
		b.WriteString("All tasks active!\n")
	} else {
		b.WriteString("List of tasks:\n")
		for i := range snap.Pending {
			fmt.Fprintf(&b, "%s\n", &snap.Pending[i])
		}
	}

	fmt.Fprintf(&b, "Simulation Time: %.3f (tick %d, %s)\n", snap.Time, snap.Tick, snap.State)
	for _, p := range snap.Processors {
		if p.Task == nil {
			fmt.Fprintf(&b, "Processor(id=%d, idle)\n", p.ID)
			continue
		}
		fmt.Fprintf(&b, "Processor(id=%d, current_task=%s, time_left=%g)\n", p.ID, p.Task, p.Remaining)
	}

	fmt.Fprintf(&b, "Buffer Size: %d/%d\n", len(snap.Buffer), snap.BufferCapacity)
	for i := range snap.Buffer {
		fmt.Fprintf(&b, "%d: %s\n", i, &snap.Buffer[i])
	}
	fmt.Fprintf(&b, "Rejected: %d\n", snap.Counters.Rejected)
	return b.String()
}

// Report writes the end-of-run summary.
func Report(w io.Writer, r model.Report) {
	fmt.Fprintf(w, "Run %s finished %s at t=%g after %d ticks", r.RunID, r.State, r.Time, r.Ticks)
	if r.Interrupted {
		fmt.Fprint(w, " (interrupted)")
	}
	fmt.Fprintln(w)

	c := r.Counters
	fmt.Fprintf(w, "  tasks: %d total, %d admitted, %d dispatched, %d completed, %d preempted, %d rejected\n",
		c.Total, c.Admitted, c.Dispatched, c.Completed, c.Preempted, c.Rejected)
	for _, rej := range r.Rejections {
		fmt.Fprintf(w, "  %s\n", rej.Message)
	}
}
