package fsm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateState       = errors.New("fsm: duplicate state")
	ErrUnknownState         = errors.New("fsm: unknown state")
	ErrInvalidTransition    = errors.New("fsm: invalid transition")
	ErrAlreadyStarted       = errors.New("fsm: already started")
	ErrNotStarted           = errors.New("fsm: not started")
	ErrTransitionInProgress = errors.New("fsm: transition in progress")
	ErrKindMismatch         = errors.New("fsm: registry kind mismatch")
)

// StateError reports a configuration or lookup problem with a single state.
type StateError struct {
	Op    string
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("fsm: %s state %q: %s", e.Op, e.State, strings.TrimPrefix(e.Err.Error(), "fsm: "))
}

func (e *StateError) Unwrap() error { return e.Err }

// TransitionError is returned when the target is not in the current state's
// allowed transitions. The machine stays where it was.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("fsm: invalid transition from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Phase names the callback being run.
type Phase string

const (
	PhaseEnter  Phase = "enter"
	PhaseExit   Phase = "exit"
	PhaseUpdate Phase = "update"
)

// CallbackError wraps a failure returned by a behaviour callback. Index is the
// position of the failing behaviour in its state; behaviours after it did not
// run for this phase.
//
// For PhaseExit the machine has not moved. For PhaseEnter the machine is
// already in State and the remaining enter callbacks were skipped.
type CallbackError struct {
	Phase Phase
	State string
	Index int
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("fsm: %s callback %d of state %q: %v", e.Phase, e.Index, e.State, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// IsCallbackError reports whether err came from a behaviour callback.
func IsCallbackError(err error) bool {
	var e *CallbackError
	return errors.As(err, &e)
}
