package flow

import (
	"fmt"
	"path"
	"strings"

	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

// Kind is a registry kind backed by a flow file. Its name is the file name
// without extension.
type Kind struct {
	fsm.Kind[string]
	file    string
	catalog *Catalog
}

func (c *Catalog) Kind(file string) Kind {
	return Kind{
		Kind: fsm.NewKind(KindName(file), func() (*fsm.Machine[string], error) {
			f, err := c.Load(file)
			if err != nil {
				return nil, err
			}
			return f.Machine, nil
		}),
		file:    file,
		catalog: c,
	}
}

// KindName is the registry name for a flow file: "prefabs/app.yaml" is "app".
func KindName(file string) string {
	base := path.Base(strings.ReplaceAll(file, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func (k Kind) File() string { return k.file }

// Start resolves the machine and starts it in the flow's initial state unless
// it is already running.
func (k Kind) Start() (*fsm.Machine[string], error) {
	m, err := k.Get()
	if err != nil {
		return nil, err
	}
	if m.Started() {
		return m, nil
	}
	spec, err := prefabs.LoadFlowSpec(k.file)
	if err != nil {
		return nil, err
	}
	if err := m.Start(spec.Initial); err != nil {
		return m, fmt.Errorf("flow: start %s: %w", k.file, err)
	}
	return m, nil
}

// Reload rebuilds the machine from its file and hands over to it in the
// active registry. If the file fails to compile the running machine is kept.
// If the hand-over fails before next starts, old is kept when it is still
// running and forgotten otherwise.
func (k Kind) Reload() (*fsm.Machine[string], error) {
	r := fsm.Active()
	if r == nil {
		return nil, fmt.Errorf("flow: reload %s: no active registry", k.file)
	}
	old, err := k.In(r)
	if err != nil {
		return nil, err
	}

	next, err := k.catalog.Load(k.file)
	if err != nil {
		return old, fmt.Errorf("flow: reload %s: %w", k.file, err)
	}
	target, err := Handover(old, next.Machine, next.Spec.Initial)
	if err != nil {
		err = fmt.Errorf("flow: reload %s: %w", k.file, err)
		if !next.Machine.Started() {
			if !old.Started() {
				r.Forget(k.Name())
			}
			return old, err
		}
	}

	r.Forget(k.Name())
	swapped := fsm.NewKind(k.Name(), func() (*fsm.Machine[string], error) { return next.Machine, nil })
	if _, serr := swapped.In(r); serr != nil {
		return nil, serr
	}
	k.catalog.logger.Info("flow reloaded", logger.Flow(k.file), logger.State(target), logger.Error(err))
	return next.Machine, err
}

// Handover stops old and starts next in the state old was in, when next has
// it, or in initial otherwise. It returns the state next started in. A nil
// or stopped old machine just starts next in initial.
func Handover(old, next *fsm.Machine[string], initial string) (string, error) {
	target := initial
	if old != nil && old.Started() {
		cur, _ := old.Current()
		if _, err := next.GetState(cur); err == nil {
			target = cur
		}
		if err := old.Stop(); err != nil {
			return "", fmt.Errorf("flow: handover: stop %s: %w", old.Name(), err)
		}
	}
	if err := next.Start(target); err != nil {
		return target, fmt.Errorf("flow: handover: start %s: %w", next.Name(), err)
	}
	return target, nil
}
