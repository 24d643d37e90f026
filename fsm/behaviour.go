package fsm

import "fmt"

// Transition describes the edge a callback runs on. Initial is set when the
// machine is starting and From is meaningless; Final is set when the machine
// is stopping and To is meaningless.
type Transition[ID comparable] struct {
	From    ID
	To      ID
	Initial bool
	Final   bool
}

func (t Transition[ID]) String() string {
	switch {
	case t.Initial:
		return fmt.Sprintf("start -> %v", t.To)
	case t.Final:
		return fmt.Sprintf("%v -> stop", t.From)
	default:
		return fmt.Sprintf("%v -> %v", t.From, t.To)
	}
}

// Behaviour is a unit of enter/exit logic attached to exactly one State.
type Behaviour[ID comparable] interface {
	OnEnter(t Transition[ID]) error
	OnExit(t Transition[ID]) error
}

// Updater is implemented by behaviours that need a per-frame tick while their
// state is current. See Machine.Update.
type Updater interface {
	OnUpdate() error
}

// Base is embedded by concrete behaviours. It keeps a non-owning reference to
// the owning state and caches its label at construction. Its callbacks do
// nothing, so embedders only override what they need.
type Base[ID comparable] struct {
	owner *State[ID]
	label string
}

func NewBase[ID comparable](owner *State[ID]) Base[ID] {
	b := Base[ID]{owner: owner}
	if owner != nil {
		b.label = owner.Label()
	}
	return b
}

func (b Base[ID]) State() *State[ID] { return b.owner }

func (b Base[ID]) StateLabel() string { return b.label }

// Request asks the owning machine for a transition once the current callback
// or update returns.
func (b Base[ID]) Request(target ID) error {
	if b.owner == nil || b.owner.machine == nil {
		return ErrNotStarted
	}
	return b.owner.machine.Request(target)
}

func (Base[ID]) OnEnter(Transition[ID]) error { return nil }
func (Base[ID]) OnExit(Transition[ID]) error  { return nil }

// Funcs adapts plain functions to a Behaviour. Nil fields are skipped.
type Funcs[ID comparable] struct {
	Base[ID]
	Enter  func(t Transition[ID]) error
	Exit   func(t Transition[ID]) error
	Update func() error
}

func (f *Funcs[ID]) OnEnter(t Transition[ID]) error {
	if f.Enter == nil {
		return nil
	}
	return f.Enter(t)
}

func (f *Funcs[ID]) OnExit(t Transition[ID]) error {
	if f.Exit == nil {
		return nil
	}
	return f.Exit(t)
}

func (f *Funcs[ID]) OnUpdate() error {
	if f.Update == nil {
		return nil
	}
	return f.Update()
}

func label[ID comparable](id ID) string {
	return fmt.Sprint(id)
}
