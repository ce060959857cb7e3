package dashboard

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a Controller.
type State int

const (
	Loading State = iota
	Ready
	Submitting
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "LOADING"
	case Ready:
		return "READY"
	case Submitting:
		return "SUBMITTING"
	case Errored:
		return "ERRORED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrBusy is returned when a create, update or delete is already in
	// flight.  Nothing is sent.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrNotReady is returned for actions that need the Ready state.
	ErrNotReady = errors.New("dashboard is not ready")
	// ErrNoForm is returned by Submit and Delete when no form is open, and
	// by Delete when the form is in create mode.
	ErrNoForm = errors.New("no mission form open")
)

// InvalidTransitionError reports a transition the state table forbids.
type InvalidTransitionError struct {
	From, To State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid dashboard transition %s -> %s", e.From, e.To)
}

func allowed(from, to State) bool {
	switch from {
	case Loading:
		return to == Ready || to == Errored
	case Ready:
		return to == Loading || to == Submitting || to == Errored
	case Submitting:
		return to == Ready || to == Errored
	case Errored:
		return to == Loading
	}
	return false
}

// guard maps the current state to the error an action needing Ready gets.
func guard(s State) error {
	switch s {
	case Ready:
		return nil
	case Submitting:
		return ErrBusy
	}
	return ErrNotReady
}
