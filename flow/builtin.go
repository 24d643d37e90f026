package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
	"github.com/milk9111/appflow/script"
)

type logArgs struct {
	Message string `yaml:"message"`
	Level   string `yaml:"level"`
}

// logBehaviour logs its message on enter and exit.
type logBehaviour struct {
	fsm.Base[string]
	message string
	level   slog.Level
	log     *slog.Logger
}

func newLog(ctx BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	args, err := prefabs.DecodeArgs[logArgs](raw)
	if err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if args.Level != "" {
		if level, err = logger.ParseLevel(args.Level); err != nil {
			return nil, err
		}
	}
	return &logBehaviour{
		Base:    fsm.NewBase(ctx.State),
		message: args.Message,
		level:   level,
		log:     ctx.Logger,
	}, nil
}

func (b *logBehaviour) OnEnter(t fsm.Transition[string]) error {
	b.log.Log(context.Background(), b.level, b.message, slog.String("event", "enter"), slog.String("transition", t.String()))
	return nil
}

func (b *logBehaviour) OnExit(t fsm.Transition[string]) error {
	b.log.Log(context.Background(), b.level, b.message, slog.String("event", "exit"), slog.String("transition", t.String()))
	return nil
}

type afterArgs struct {
	Ticks int    `yaml:"ticks"`
	To    string `yaml:"to"`
}

// After requests a transition once its state has been updated Ticks times.
type After struct {
	fsm.Base[string]
	ticks   int
	to      string
	elapsed int
}

func newAfter(ctx BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	args, err := prefabs.DecodeArgs[afterArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.Ticks <= 0 {
		return nil, fmt.Errorf("%w: after: ticks must be positive", ErrInvalidSpec)
	}
	if !ctx.State.CanTransitionTo(args.To) {
		return nil, fmt.Errorf("%w: after: %q is not a transition of %q", ErrInvalidSpec, args.To, ctx.State.Label())
	}
	return &After{Base: fsm.NewBase(ctx.State), ticks: args.Ticks, to: args.To}, nil
}

func (a *After) OnEnter(fsm.Transition[string]) error {
	a.elapsed = 0
	return nil
}

func (a *After) OnUpdate() error {
	a.elapsed++
	if a.elapsed == a.ticks {
		return a.Request(a.to)
	}
	return nil
}

type scriptArgs struct {
	File string `yaml:"file"`
}

// newScript passes every arg, file included, through to the script as
// engine.args.
func newScript(ctx BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	args, err := prefabs.DecodeArgs[scriptArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.File == "" {
		return nil, fmt.Errorf("%w: script: no file", ErrInvalidSpec)
	}
	return script.Load(ctx.State, args.File, script.WithArgs(raw), script.WithLogger(ctx.Logger))
}

type nestedArgs struct {
	Flow    string            `yaml:"flow"`
	Initial string            `yaml:"initial"`
	ExitOn  map[string]string `yaml:"exit_on"`
}

// newNested compiles the child flow once. The same child machine is started
// on every entry and stopped on every exit.
func newNested(ctx BuildContext, raw map[string]any) (fsm.Behaviour[string], error) {
	args, err := prefabs.DecodeArgs[nestedArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.Flow == "" {
		return nil, fmt.Errorf("%w: nested: no flow", ErrInvalidSpec)
	}
	child, err := ctx.Catalog.load(args.Flow, ctx.files)
	if err != nil {
		return nil, err
	}

	initial := child.Spec.Initial
	if args.Initial != "" {
		if _, err := child.Machine.GetState(args.Initial); err != nil {
			return nil, fmt.Errorf("%w: nested: initial: %w", ErrInvalidSpec, err)
		}
		initial = args.Initial
	}

	n := fsm.NewNested(ctx.State, initial, func() (*fsm.Machine[string], error) {
		return child.Machine, nil
	})
	for done, target := range args.ExitOn {
		if _, err := child.Machine.GetState(done); err != nil {
			return nil, fmt.Errorf("%w: nested: exit_on: %w", ErrInvalidSpec, err)
		}
		if !ctx.State.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: nested: exit_on: %q is not a transition of %q", ErrInvalidSpec, target, ctx.State.Label())
		}
		n.ExitOn(done, target)
	}
	return n, nil
}
