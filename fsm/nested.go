package fsm

// Nested runs a child machine for as long as its owning state is current.
// The child is built and started on enter, ticked by the parent's Update and
// stopped on exit.
type Nested[ID, CID comparable] struct {
	Base[ID]
	initial CID
	build   func() (*Machine[CID], error)
	exits   map[CID]ID
	child   *Machine[CID]
}

// NewNested returns a behaviour for owner. build may return the same machine
// every time (a registry Kind, for instance) since Stop leaves it ready to be
// started again.
func NewNested[ID, CID comparable](owner *State[ID], initial CID, build func() (*Machine[CID], error)) *Nested[ID, CID] {
	return &Nested[ID, CID]{
		Base:    NewBase(owner),
		initial: initial,
		build:   build,
		exits:   make(map[CID]ID),
	}
}

// ExitOn makes the parent request target once the child reaches done.
func (n *Nested[ID, CID]) ExitOn(done CID, target ID) *Nested[ID, CID] {
	n.exits[done] = target
	return n
}

// Child returns the running child machine, or nil outside the owning state.
func (n *Nested[ID, CID]) Child() *Machine[CID] { return n.child }

func (n *Nested[ID, CID]) OnEnter(Transition[ID]) error {
	m, err := n.build()
	if err != nil {
		return err
	}
	if m == nil {
		return errNilMachine
	}
	err = m.Start(n.initial)
	if m.Started() {
		n.child = m
	}
	return err
}

func (n *Nested[ID, CID]) OnUpdate() error {
	if n.child == nil {
		return nil
	}
	if err := n.child.Update(); err != nil {
		return err
	}
	cur, ok := n.child.Current()
	if !ok {
		return nil
	}
	if target, ok := n.exits[cur]; ok {
		return n.Request(target)
	}
	return nil
}

// OnExit stops the child. If the child fails to stop it is kept, and the
// parent stays in the owning state.
func (n *Nested[ID, CID]) OnExit(Transition[ID]) error {
	if n.child == nil {
		return nil
	}
	if err := n.child.Stop(); err != nil {
		return err
	}
	n.child = nil
	return nil
}
