package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/me/schedsim/pkg/model"
)

func snapshot(tick int, state model.RunState, c model.Counters) model.Snapshot {
	return model.Snapshot{
		RunID: "run_test",
		Tick:  tick,
		Time:  float64(tick) / 100,
		State: state,
		Processors: []model.ProcessorSnapshot{
			{ID: 0, Task: &model.Task{ID: 1}, Remaining: 0.1},
			{ID: 1},
		},
		Buffer:   []model.Task{{ID: 2}, {ID: 3}},
		Pending:  []model.Task{{ID: 4}},
		Counters: c,
	}
}

func TestCollector_Observe(t *testing.T) {
	c := NewCollector()

	c.Observe(snapshot(1, model.RunStateRunning, model.Counters{Admitted: 2, Dispatched: 1}))
	c.Observe(snapshot(3, model.RunStateRunning, model.Counters{Admitted: 3, Dispatched: 2, Completed: 1, Rejected: 1, Preempted: 1}))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ticks", testutil.ToFloat64(c.ticks), 3},
		{"admitted", testutil.ToFloat64(c.admitted), 3},
		{"dispatched", testutil.ToFloat64(c.dispatched), 2},
		{"completed", testutil.ToFloat64(c.completed), 1},
		{"preempted", testutil.ToFloat64(c.preempted), 1},
		{"rejected", testutil.ToFloat64(c.rejected), 1},
		{"sim time", testutil.ToFloat64(c.simTime), 0.03},
		{"buffer", testutil.ToFloat64(c.bufferSize), 2},
		{"busy", testutil.ToFloat64(c.busy), 1},
		{"pending", testutil.ToFloat64(c.pending), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_FinalSnapshotCountedOnce(t *testing.T) {
	c := NewCollector()
	final := snapshot(5, model.RunStateSuccess, model.Counters{Completed: 4})

	c.Observe(final)
	c.Observe(final)

	if got := testutil.ToFloat64(c.completed); got != 4 {
		t.Errorf("completed = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.terminal.WithLabelValues("SUCCESS")); got != 1 {
		t.Errorf("runs_finished{SUCCESS} = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.Observe(snapshot(1, model.RunStateRunning, model.Counters{Admitted: 1}))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"schedsim_ticks_total 1", "schedsim_tasks_admitted_total 1", "schedsim_buffer_size 2"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}
