package simulator

import "github.com/me/schedsim/pkg/model"

// signal carries the result of one tick phase to the step that acts on it.
// The set of variants is closed; apply panics on anything else.
type signal interface {
	isSignal()
}

// noOp means the phase found nothing to do.
type noOp struct{}

// arrivals lists tasks that reached zero arrival time and may try admission.
type arrivals struct {
	tasks []*model.Task
}

// assignment pairs a buffered task with the free processor it will run on.
type assignment struct {
	task      *model.Task
	processor int
}

// dispatch lists buffered tasks bound for free processors.
type dispatch struct {
	assignments []assignment
}

// preemptRequest lists tasks that found no free processor.
type preemptRequest struct {
	tasks []*model.Task
}

func (noOp) isSignal()           {}
func (arrivals) isSignal()       {}
func (dispatch) isSignal()       {}
func (preemptRequest) isSignal() {}
