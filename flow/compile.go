package flow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

// maxDepth bounds nested flows.
const maxDepth = 8

// Flow is a compiled spec. The machine is not started.
type Flow struct {
	Spec    prefabs.FlowSpec
	Machine *fsm.Machine[string]
}

// Start starts the machine in the spec's initial state.
func (f *Flow) Start() error {
	return f.Machine.Start(f.Spec.Initial)
}

// Compile builds a machine from spec. Every problem found is reported, joined
// into one error.
func (c *Catalog) Compile(spec prefabs.FlowSpec) (*Flow, error) {
	return c.compile(spec, nil)
}

// Load reads the flow file name from prefabs and compiles it.
func (c *Catalog) Load(name string) (*Flow, error) {
	return c.load(name, nil)
}

func (c *Catalog) load(name string, parents []string) (*Flow, error) {
	if slices.Contains(parents, name) {
		return nil, fmt.Errorf("%w: %s nests itself", ErrInvalidSpec, name)
	}
	if len(parents) >= maxDepth {
		return nil, fmt.Errorf("%w: %s nested deeper than %d", ErrInvalidSpec, name, maxDepth)
	}
	spec, err := prefabs.LoadFlowSpec(name)
	if err != nil {
		return nil, err
	}
	return c.compile(spec, append(slices.Clone(parents), name))
}

func (c *Catalog) compile(spec prefabs.FlowSpec, files []string) (*Flow, error) {
	log := c.logger.With(logger.Flow(spec.Name))
	m := fsm.New[string](fsm.WithName(spec.Name), fsm.WithLogger(c.logger))

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(spec.States) == 0 {
		fail("%w: no states", ErrInvalidSpec)
	}

	states := make([]*fsm.State[string], len(spec.States))
	for i, s := range spec.States {
		if s.Name == "" {
			fail("%w: state %d has no name", ErrInvalidSpec, i)
			continue
		}
		st, err := m.AddState(s.Name)
		if err != nil {
			fail("%w: %w", ErrInvalidSpec, err)
			continue
		}
		states[i] = st
	}

	switch {
	case spec.Initial == "":
		fail("%w: no initial state", ErrInvalidSpec)
	case len(spec.States) > 0:
		if _, err := m.GetState(spec.Initial); err != nil {
			fail("%w: initial: %w", ErrInvalidSpec, err)
		}
	}

	for i, s := range spec.States {
		st := states[i]
		if st == nil {
			continue
		}
		for _, target := range s.Transitions {
			if _, err := m.GetState(target); err != nil {
				fail("%w: state %q: transition: %w", ErrInvalidSpec, s.Name, err)
				continue
			}
			st.AddTransition(target)
		}
	}

	// Behaviours are built last so factories can check transitions.
	for i, s := range spec.States {
		st := states[i]
		if st == nil {
			continue
		}
		ctx := BuildContext{
			Flow:    spec.Name,
			Machine: m,
			State:   st,
			Logger:  log.With(logger.State(st.Label())),
			Catalog: c,
			files:   files,
		}
		for j, b := range s.Behaviours {
			f, ok := c.factory(b.Type)
			if !ok {
				fail("state %q: behaviour %d: %w %q", s.Name, j, ErrUnknownBehaviour, b.Type)
				continue
			}
			behaviour, err := f(ctx, b.Args)
			if err != nil {
				fail("state %q: behaviour %d (%s): %w", s.Name, j, b.Type, err)
				continue
			}
			st.AddBehaviour(behaviour)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("flow: %s: %w", spec.Name, errors.Join(errs...))
	}
	log.Debug("compiled", "states", len(spec.States))
	return &Flow{Spec: spec, Machine: m}, nil
}
