package app

import (
	"log/slog"

	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

// Driver ticks the machine of a flow kind once per frame. The machine is
// looked up every frame so a reload takes effect on the next tick.
type Driver struct {
	kind flow.Kind
}

func NewDriver(kind flow.Kind) *Driver {
	return &Driver{kind: kind}
}

// Start starts the flow in initial, or in the flow's own initial state when
// initial is empty. A running machine is returned as is.
func (d *Driver) Start(initial string) (*fsm.Machine[string], error) {
	if initial == "" {
		return d.kind.Start()
	}
	m, err := d.kind.Get()
	if err != nil {
		return nil, err
	}
	if m.Started() {
		return m, nil
	}
	return m, m.Start(initial)
}

func (d *Driver) Update() error {
	m, err := d.kind.Get()
	if err != nil {
		return err
	}
	if !m.Started() {
		return nil
	}
	return m.Update()
}

// Current reports the running machine's state.
func (d *Driver) Current() (string, bool) {
	m, err := d.kind.Get()
	if err != nil {
		return "", false
	}
	return m.Current()
}

// Reloader rebuilds a flow kind when its files change. Changes arriving in
// the same frame cause one reload. Failed reloads are logged and the running
// machine is kept.
type Reloader struct {
	changes <-chan prefabs.Change
	kind    flow.Kind
	log     *slog.Logger
	reloads int
}

func NewReloader(changes <-chan prefabs.Change, kind flow.Kind, log *slog.Logger) *Reloader {
	if log == nil {
		log = slog.Default()
	}
	return &Reloader{
		changes: changes,
		kind:    kind,
		log:     log.With(logger.Component("reload")),
	}
}

func (r *Reloader) Update() error {
	var last *prefabs.Change
drain:
	for r.changes != nil {
		select {
		case ch, ok := <-r.changes:
			if !ok {
				r.changes = nil
				break drain
			}
			last = &ch
		default:
			break drain
		}
	}
	if last == nil {
		return nil
	}
	r.log.Debug("change detected", logger.Path(last.Path), slog.Bool("script", last.Script))
	if _, err := r.kind.Reload(); err != nil {
		r.log.Error("reload failed", logger.Flow(r.kind.File()), logger.Error(err))
		return nil
	}
	r.reloads++
	return nil
}

// Reloads is the number of successful reloads.
func (r *Reloader) Reloads() int { return r.reloads }
