package bench

import "sync/atomic"

// State is the lifecycle of one benchmark run's shared flag.
type State int32

const (
	StateRunning State = iota
	StateStopRequested
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop_requested"
	case StateStopped:
		return "stopped"
	}

	return "unknown"
}

// RunState is the single piece of state shared between the watchdog and the
// load phases. Transitions are totally ordered: Running → StopRequested →
// Stopped. The watchdog may only perform the first transition, via a
// compare-and-set so a trip can never be lost to a concurrent natural
// completion; the supervisor performs the final one during teardown.
type RunState struct {
	state  atomic.Int32
	reason atomic.Pointer[string]
}

// NewRunState starts a run in the Running state.
func NewRunState() *RunState {
	return &RunState{}
}

// Running reports whether load phases should keep iterating.
func (s *RunState) Running() bool {
	return State(s.state.Load()) == StateRunning
}

// RequestStop trips the run once. Only the Running → StopRequested
// transition succeeds; later calls return false and the first reason stands.
// The reason store is ordered before the caller's exit, so a supervisor that
// joins the tripping goroutine always observes it.
func (s *RunState) RequestStop(reason string) bool {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopRequested)) {
		return false
	}

	s.reason.Store(&reason)

	return true
}

// StopRequested reports whether the watchdog tripped the run.
func (s *RunState) StopRequested() bool {
	return State(s.state.Load()) == StateStopRequested
}

// Reason returns the trip reason, or empty if the run was never tripped.
func (s *RunState) Reason() string {
	if p := s.reason.Load(); p != nil {
		return *p
	}

	return ""
}

// Finalize moves the run to Stopped regardless of how it ended. Called
// exactly once by the supervisor after the watchdog has been joined.
func (s *RunState) Finalize() {
	s.state.Store(int32(StateStopped))
}

// Current returns the state value for inspection.
func (s *RunState) Current() State {
	return State(s.state.Load())
}
