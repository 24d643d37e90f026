// Package script runs tengo scripts as state behaviours.
//
// A script defines three hooks:
//
//	onEnter := func(engine, state, from) { ... }
//	update  := func(engine, state) { ... }
//	onExit  := func(engine, state, to) { ... }
//
// state is a map that survives between calls. engine exposes request(name),
// log(args...), label and args. from is empty when the machine is starting
// and to is empty when it is stopping.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

var ErrMissingHook = errors.New("script: missing hook")

var hooks = []string{"onEnter", "update", "onExit"}

// hookDef matches a hook defined or assigned at the start of a line, not a
// comparison such as `update == x`.
var hookDef = regexp.MustCompile(`(?m)^\s*(onEnter|update|onExit)\s*(:=|=[^=])`)

const dispatch = `
if __phase == "enter" {
	onEnter(__engine, __state, __other)
} else if __phase == "update" {
	update(__engine, __state)
} else if __phase == "exit" {
	onExit(__engine, __state, __other)
}
`

type Option func(*options)

type options struct {
	logger *slog.Logger
	args   map[string]any
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithArgs exposes args to the script as engine.args.
func WithArgs(args map[string]any) Option {
	return func(o *options) { o.args = args }
}

// Behaviour drives a compiled script from the owning state's callbacks.
type Behaviour struct {
	fsm.Base[string]
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	log      *slog.Logger

	requestErr error
}

// Load compiles the script file name from prefabs.
func Load(owner *fsm.State[string], name string, opts ...Option) (*Behaviour, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	return New(owner, name, src, opts...)
}

func New(owner *fsm.State[string], name string, src []byte, opts ...Option) (*Behaviour, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Behaviour{
		Base:  fsm.NewBase(owner),
		name:  name,
		state: &tengo.Map{Value: map[string]tengo.Object{}},
	}
	b.log = o.logger.With(logger.Component("script"), slog.String("script", name), logger.State(b.StateLabel()))

	engine, err := b.buildEngine(o.args)
	if err != nil {
		return nil, err
	}
	b.engine = engine

	if missing := missingHooks(src); len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingHook, name, strings.Join(missing, ", "))
	}

	s := tengo.NewScript([]byte(string(src) + "\n" + dispatch))
	_ = s.Add("__phase", "")
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__state", map[string]any{})
	_ = s.Add("__other", "")
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	b.compiled = compiled

	// A no-op pass defines the hooks as globals.
	if err := b.run("noop", ""); err != nil {
		return nil, err
	}
	var missing []string
	for _, h := range hooks {
		if !compiled.IsDefined(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingHook, name, strings.Join(missing, ", "))
	}
	return b, nil
}

// missingHooks lists hooks with no top-level definition. The dispatch block
// would otherwise fail to compile with an unresolved reference.
func missingHooks(src []byte) []string {
	defined := make(map[string]bool, len(hooks))
	for _, m := range hookDef.FindAllSubmatch(src, -1) {
		defined[string(m[1])] = true
	}
	var missing []string
	for _, h := range hooks {
		if !defined[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

func (b *Behaviour) Name() string { return b.name }

func (b *Behaviour) OnEnter(t fsm.Transition[string]) error {
	from := t.From
	if t.Initial {
		from = ""
	}
	return b.run("enter", from)
}

func (b *Behaviour) OnUpdate() error {
	return b.run("update", "")
}

func (b *Behaviour) OnExit(t fsm.Transition[string]) error {
	to := t.To
	if t.Final {
		to = ""
	}
	return b.run("exit", to)
}

// Vars returns a copy of the script's state map, converted with
// tengo.ToInterface: script integers come back as int64.
func (b *Behaviour) Vars() map[string]any {
	out, _ := tengo.ToInterface(b.state).(map[string]any)
	return out
}

func (b *Behaviour) run(phase, other string) error {
	if err := b.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := b.compiled.Set("__engine", b.engine); err != nil {
		return err
	}
	if err := b.compiled.Set("__state", b.state); err != nil {
		return err
	}
	if err := b.compiled.Set("__other", other); err != nil {
		return err
	}
	b.requestErr = nil
	if err := b.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s %s: %w", b.name, phase, err)
	}
	if b.requestErr != nil {
		return fmt.Errorf("script: %s %s: %w", b.name, phase, b.requestErr)
	}
	return nil
}

func (b *Behaviour) buildEngine(args map[string]any) (*tengo.ImmutableMap, error) {
	argValues := make(map[string]tengo.Object, len(args))
	for k, v := range args {
		obj, err := tengo.FromInterface(v)
		if err != nil {
			return nil, fmt.Errorf("script: %s: arg %q: %w", b.name, k, err)
		}
		argValues[k] = obj
	}

	values := map[string]tengo.Object{
		"label": &tengo.String{Value: b.StateLabel()},
		"args":  &tengo.ImmutableMap{Value: argValues},
	}

	values["request"] = &tengo.UserFunction{Name: "request", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		target, _ := tengo.ToString(args[0])
		target = strings.TrimSpace(target)
		if target == "" {
			return tengo.FalseValue, nil
		}
		if err := b.Request(target); err != nil {
			b.requestErr = err
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			if s, ok := tengo.ToString(a); ok {
				parts = append(parts, s)
			}
		}
		b.log.Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}, nil
}
