package fsm

import (
	"log/slog"

	"github.com/milk9111/appflow/logger"
)

type Option func(*options)

type options struct {
	name   string
	logger *slog.Logger
}

// WithName sets the name used in logs and by the flow registry.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger replaces slog.Default. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Machine owns a graph of States and tracks which one is current.
type Machine[ID comparable] struct {
	name string
	log  *slog.Logger

	states map[ID]*State[ID]
	order  []ID

	current ID
	started bool
	busy    bool

	pending    ID
	hasPending bool

	observers []func(Transition[ID])
}

func New[ID comparable](opts ...Option) *Machine[ID] {
	o := options{name: "fsm", logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Machine[ID]{
		name:   o.name,
		log:    o.logger.With(logger.Component("fsm"), logger.Machine(o.name)),
		states: make(map[ID]*State[ID]),
	}
}

func (m *Machine[ID]) Name() string { return m.name }

// AddState registers a new state and returns it for configuration. An id that
// is already registered is rejected and the existing state is left as is.
func (m *Machine[ID]) AddState(id ID) (*State[ID], error) {
	if _, ok := m.states[id]; ok {
		return nil, &StateError{Op: "add", State: label(id), Err: ErrDuplicateState}
	}
	s := newState(m, id)
	m.states[id] = s
	m.order = append(m.order, id)
	return s, nil
}

// MustAddState is AddState for static setup code. It panics on error.
func (m *Machine[ID]) MustAddState(id ID) *State[ID] {
	s, err := m.AddState(id)
	if err != nil {
		panic(err)
	}
	return s
}

func (m *Machine[ID]) GetState(id ID) (*State[ID], error) {
	s, ok := m.states[id]
	if !ok {
		return nil, &StateError{Op: "get", State: label(id), Err: ErrUnknownState}
	}
	return s, nil
}

// States lists registered ids in the order they were added.
func (m *Machine[ID]) States() []ID {
	return append([]ID(nil), m.order...)
}

// Current returns the current state id. ok is false before Start and after
// Stop.
func (m *Machine[ID]) Current() (id ID, ok bool) {
	return m.current, m.started
}

func (m *Machine[ID]) Started() bool { return m.started }

// Pending returns the transition recorded by Request, if any.
func (m *Machine[ID]) Pending() (ID, bool) {
	return m.pending, m.hasPending
}

// Observe registers fn to be called after every successful Start,
// TransitionTo and Stop. Observers run while the machine is busy, so they
// may Request but not transition.
func (m *Machine[ID]) Observe(fn func(Transition[ID])) {
	if fn != nil {
		m.observers = append(m.observers, fn)
	}
}

// Start enters initial. On an enter callback failure the machine is running
// in initial and the remaining enter callbacks were skipped.
func (m *Machine[ID]) Start(initial ID) error {
	if m.busy {
		return ErrTransitionInProgress
	}
	if m.started {
		return ErrAlreadyStarted
	}
	s, ok := m.states[initial]
	if !ok {
		return &StateError{Op: "start", State: label(initial), Err: ErrUnknownState}
	}

	m.clearPending()
	m.current = initial
	m.started = true

	t := Transition[ID]{To: initial, Initial: true}
	if err := m.run(func() error { return s.Enter(t) }); err != nil {
		m.log.Warn("enter failed", logger.State(s.label), logger.Error(err))
		return err
	}
	m.log.Debug("started", logger.State(s.label))
	m.notify(t)
	return nil
}

// TransitionTo moves from the current state to target. Every exit callback
// of the current state runs before any enter callback of target.
//
// If an exit callback fails the machine stays where it was. If an enter
// callback fails the machine is already in target.
func (m *Machine[ID]) TransitionTo(target ID) error {
	if m.busy {
		return ErrTransitionInProgress
	}
	if !m.started {
		return ErrNotStarted
	}
	cur := m.states[m.current]
	if !cur.CanTransitionTo(target) {
		return &TransitionError{From: cur.label, To: label(target)}
	}
	next, ok := m.states[target]
	if !ok {
		return &StateError{Op: "transition to", State: label(target), Err: ErrUnknownState}
	}

	t := Transition[ID]{From: cur.id, To: target}
	if err := m.run(func() error { return cur.Exit(t) }); err != nil {
		m.log.Warn("exit failed", logger.From(cur.label), logger.To(next.label), logger.Error(err))
		return err
	}
	// Requests made while leaving belong to the old state.
	m.clearPending()
	m.current = target
	if err := m.run(func() error { return next.Enter(t) }); err != nil {
		m.log.Warn("enter failed", logger.From(cur.label), logger.To(next.label), logger.Error(err))
		return err
	}
	m.log.Debug("transition", logger.From(cur.label), logger.To(next.label))
	m.notify(t)
	return nil
}

// Request records a transition to be applied by the next Update. It is the
// only way for a behaviour to move the machine from inside a callback. A
// later request replaces an earlier one. Requests made by exit callbacks are
// dropped once the state is left, as they are by Stop.
func (m *Machine[ID]) Request(target ID) error {
	if !m.started {
		return ErrNotStarted
	}
	if _, ok := m.states[target]; !ok {
		return &StateError{Op: "request", State: label(target), Err: ErrUnknownState}
	}
	m.pending = target
	m.hasPending = true
	return nil
}

// Update ticks every Updater behaviour of the current state in registration
// order, then applies the pending request, if any. A failing update leaves
// the request pending.
func (m *Machine[ID]) Update() error {
	if m.busy {
		return ErrTransitionInProgress
	}
	if !m.started {
		return ErrNotStarted
	}
	cur := m.states[m.current]
	if err := m.run(cur.update); err != nil {
		m.log.Warn("update failed", logger.State(cur.label), logger.Error(err))
		return err
	}
	if !m.hasPending {
		return nil
	}
	target := m.pending
	m.clearPending()
	return m.TransitionTo(target)
}

// Stop exits the current state with a final transition and returns the
// machine to its unstarted state, ready for another Start. If an exit
// callback fails the machine keeps running.
func (m *Machine[ID]) Stop() error {
	if m.busy {
		return ErrTransitionInProgress
	}
	if !m.started {
		return ErrNotStarted
	}
	cur := m.states[m.current]
	t := Transition[ID]{From: cur.id, Final: true}
	if err := m.run(func() error { return cur.Exit(t) }); err != nil {
		m.log.Warn("exit failed", logger.From(cur.label), logger.Error(err))
		return err
	}

	var zero ID
	m.current = zero
	m.started = false
	m.clearPending()
	m.log.Debug("stopped", logger.From(cur.label))
	m.notify(t)
	return nil
}

func (m *Machine[ID]) run(fn func() error) error {
	m.busy = true
	defer func() { m.busy = false }()
	return fn()
}

func (m *Machine[ID]) notify(t Transition[ID]) {
	if len(m.observers) == 0 {
		return
	}
	_ = m.run(func() error {
		for _, fn := range m.observers {
			fn(t)
		}
		return nil
	})
}

func (m *Machine[ID]) clearPending() {
	var zero ID
	m.pending = zero
	m.hasPending = false
}
