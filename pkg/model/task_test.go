package model

import "testing"

func TestTask_Age(t *testing.T) {
	tests := []struct {
		name    string
		arrival float64
		delta   float64
		want    float64
	}{
		{"partial", 0.05, 0.01, 0.04},
		{"exact", 0.01, 0.01, 0},
		{"overshoot clamps", 0.003, 0.01, 0},
		{"already arrived", 0, 0.01, 0},
		{"rounding drift", 0.3, 0.1, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{ID: 1, Priority: 2, Arrival: tt.arrival, ServiceTime: 1}
			task.Age(tt.delta, 4)
			if task.Arrival != tt.want {
				t.Errorf("Arrival = %v, want %v", task.Arrival, tt.want)
			}
			if task.Arrival < 0 {
				t.Errorf("Arrival went negative: %v", task.Arrival)
			}
			if task.Priority != 2 || task.ServiceTime != 1 {
				t.Errorf("Age mutated immutable fields: %+v", task)
			}
		})
	}
}

func TestTask_AgeRepeatedNoDrift(t *testing.T) {
	task := &Task{Arrival: 1}
	for i := 0; i < 99; i++ {
		task.Age(0.01, 4)
	}
	if task.Arrival != 0.01 {
		t.Fatalf("after 99 steps Arrival = %v, want 0.01", task.Arrival)
	}
	task.Age(0.01, 4)
	if !task.Arrived() {
		t.Errorf("task should have arrived, Arrival = %v", task.Arrival)
	}
}

func TestRound(t *testing.T) {
	if got := Round(0.1+0.2, 4); got != 0.3 {
		t.Errorf("Round(0.1+0.2, 4) = %v, want 0.3", got)
	}
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round(1.23456, 2) = %v, want 1.23", got)
	}
	if got := Round(1.5, -1); got != 1.5 {
		t.Errorf("negative precision should be a no-op, got %v", got)
	}
}

func TestLedger_Record(t *testing.T) {
	var l Ledger
	l.Record(&Task{ID: 7, Priority: 1}, 0.25)
	l.Record(&Task{ID: 3, Priority: 2}, 0.5)

	if l.Count() != 2 {
		t.Fatalf("Count = %d, want 2", l.Count())
	}
	ids := l.IDs()
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 3 {
		t.Errorf("IDs = %v, want [7 3]", ids)
	}
	msgs := l.Messages()
	if msgs[0] != "buffer full at t=0.25: task 7 (priority 1) rejected" {
		t.Errorf("message = %q", msgs[0])
	}

	entries := l.Entries()
	entries[0].TaskID = 99
	if l.IDs()[0] != 7 {
		t.Error("Entries must return a copy")
	}
}
