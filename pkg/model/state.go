package model

// RunState is the lifecycle tag of a simulation run.
type RunState string

const (
	RunStateRunning RunState = "RUNNING"
	RunStateSuccess RunState = "SUCCESS"
	RunStateFailure RunState = "FAILURE"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run has halted.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateSuccess, RunStateFailure:
		return true
	}
	return false
}

// ValidRunTransitions defines the allowed state transitions for a run.
var ValidRunTransitions = map[RunState][]RunState{
	RunStateRunning: {RunStateSuccess, RunStateFailure},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range ValidRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
