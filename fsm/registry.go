package fsm

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry holds at most one machine per kind name. It is safe for concurrent
// use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	machine any
}

var active atomic.Pointer[Registry]

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Activate installs r as the process-wide registry and returns the one it
// replaced, which may be nil. Tests restore the previous registry with
// t.Cleanup.
func Activate(r *Registry) *Registry {
	return active.Swap(r)
}

// Active returns the process-wide registry, or nil when none is installed.
func Active() *Registry {
	return active.Load()
}

func Deactivate() *Registry {
	return active.Swap(nil)
}

func (r *Registry) slot(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	return e
}

// Forget drops the machine registered under name so the next Get builds a new
// one. It reports whether a machine was registered.
func (r *Registry) Forget(name string) bool {
	r.mu.Lock()
	e, ok := r.entries[name]
	delete(r.entries, name)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine != nil
}

// Names lists the kinds with a built machine, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	snapshot := make(map[string]*entry, len(r.entries))
	for name, e := range r.entries {
		snapshot[name] = e
	}
	r.mu.Unlock()

	names := make([]string, 0, len(snapshot))
	for name, e := range snapshot {
		e.mu.Lock()
		built := e.machine != nil
		e.mu.Unlock()
		if built {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.Names())
}

// Kind identifies one machine in a Registry by name and knows how to build
// it. Declare kinds as package level variables:
//
//	var App = fsm.NewKind("app", buildApp)
type Kind[ID comparable] struct {
	name  string
	build func() (*Machine[ID], error)
}

// NewKind panics on an empty name or a nil build function.
func NewKind[ID comparable](name string, build func() (*Machine[ID], error)) Kind[ID] {
	if name == "" {
		panic("fsm: kind name must not be empty")
	}
	if build == nil {
		panic("fsm: kind " + name + ": nil build func")
	}
	return Kind[ID]{name: name, build: build}
}

func (k Kind[ID]) Name() string { return k.name }

// Get resolves k against the active registry. With no active registry it
// returns a new, unregistered machine on every call.
func (k Kind[ID]) Get() (*Machine[ID], error) {
	return k.In(Active())
}

// In resolves k against r, building the machine on first use. A failed build
// is not cached. A nil r behaves like Get with no active registry.
func (k Kind[ID]) In(r *Registry) (*Machine[ID], error) {
	if r == nil {
		return k.create()
	}
	for {
		m, done, err := k.resolve(r, r.slot(k.name))
		if done {
			return m, err
		}
	}
}

// resolve returns the machine held by e, building it if needed. It reports
// done=false when e was forgotten during the build, in which case the
// machine is discarded and the caller retries with a fresh entry.
func (k Kind[ID]) resolve(r *Registry, e *entry) (m *Machine[ID], done bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine != nil {
		held, ok := e.machine.(*Machine[ID])
		if !ok {
			return nil, true, fmt.Errorf("fsm: kind %q holds %T: %w", k.name, e.machine, ErrKindMismatch)
		}
		return held, true, nil
	}
	m, err = k.create()
	if err != nil {
		return nil, true, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[k.name] != e {
		return nil, false, nil
	}
	e.machine = m
	return m, true, nil
}

// MustGet is Get for code that cannot continue without the machine.
func (k Kind[ID]) MustGet() *Machine[ID] {
	m, err := k.Get()
	if err != nil {
		panic(err)
	}
	return m
}

func (k Kind[ID]) create() (*Machine[ID], error) {
	m, err := k.build()
	if err != nil {
		return nil, fmt.Errorf("fsm: build kind %q: %w", k.name, err)
	}
	if m == nil {
		return nil, fmt.Errorf("fsm: build kind %q: %w", k.name, errNilMachine)
	}
	return m, nil
}

var errNilMachine = errors.New("nil machine")
