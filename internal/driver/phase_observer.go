package driver

import "time"

// PhaseStatus reports where a file is in the pipeline.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// PhaseDone and PhaseFailed close the sequence of events for a file.
	PhaseDone
	PhaseFailed
)

// PhaseEvent describes a phase boundary.
type PhaseEvent struct {
	File    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Diagnose. CheckFiles
// calls it from several goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) notify(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}

// finish emits the closing event for a result.
func (o PhaseObserver) finish(res *DiagnoseResult, elapsed time.Duration) {
	status := PhaseDone
	if res.Failed() {
		status = PhaseFailed
	}
	o.notify(PhaseEvent{File: res.Path, Status: status, Elapsed: elapsed})
}
