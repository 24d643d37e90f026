package fsm

// State is a node in a machine's transition graph. It is created by
// Machine.AddState and owned by that machine.
type State[ID comparable] struct {
	id          ID
	label       string
	machine     *Machine[ID]
	behaviours  []Behaviour[ID]
	transitions map[ID]struct{}
	targets     []ID
}

func newState[ID comparable](m *Machine[ID], id ID) *State[ID] {
	return &State[ID]{
		id:          id,
		label:       label(id),
		machine:     m,
		transitions: make(map[ID]struct{}),
	}
}

func (s *State[ID]) ID() ID { return s.id }

// Label is the printable form of the state id.
func (s *State[ID]) Label() string { return s.label }

// Machine returns the machine that owns this state.
func (s *State[ID]) Machine() *Machine[ID] { return s.machine }

// AddBehaviour appends behaviours in callback order. Registering the same
// behaviour twice makes it run twice.
func (s *State[ID]) AddBehaviour(bs ...Behaviour[ID]) *State[ID] {
	for _, b := range bs {
		if b == nil {
			continue
		}
		s.behaviours = append(s.behaviours, b)
	}
	return s
}

// AddTransition allows moving from this state to each target. Adding a target
// twice is a no-op.
func (s *State[ID]) AddTransition(targets ...ID) *State[ID] {
	for _, t := range targets {
		if _, ok := s.transitions[t]; ok {
			continue
		}
		s.transitions[t] = struct{}{}
		s.targets = append(s.targets, t)
	}
	return s
}

func (s *State[ID]) CanTransitionTo(target ID) bool {
	_, ok := s.transitions[target]
	return ok
}

// Transitions lists allowed targets in the order they were added.
func (s *State[ID]) Transitions() []ID {
	return append([]ID(nil), s.targets...)
}

func (s *State[ID]) Behaviours() []Behaviour[ID] {
	return append([]Behaviour[ID](nil), s.behaviours...)
}

// Enter runs OnEnter on every behaviour in registration order and stops at the
// first failure.
func (s *State[ID]) Enter(t Transition[ID]) error {
	for i, b := range s.behaviours {
		if err := b.OnEnter(t); err != nil {
			return &CallbackError{Phase: PhaseEnter, State: s.label, Index: i, Err: err}
		}
	}
	return nil
}

// Exit runs OnExit on every behaviour in registration order and stops at the
// first failure.
func (s *State[ID]) Exit(t Transition[ID]) error {
	for i, b := range s.behaviours {
		if err := b.OnExit(t); err != nil {
			return &CallbackError{Phase: PhaseExit, State: s.label, Index: i, Err: err}
		}
	}
	return nil
}

func (s *State[ID]) update() error {
	for i, b := range s.behaviours {
		u, ok := b.(Updater)
		if !ok {
			continue
		}
		if err := u.OnUpdate(); err != nil {
			return &CallbackError{Phase: PhaseUpdate, State: s.label, Index: i, Err: err}
		}
	}
	return nil
}
