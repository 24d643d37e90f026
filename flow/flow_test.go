package flow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

// writeFlows chdirs into a temp dir holding files under prefabs/.
func writeFlows(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for name, body := range files {
		p := filepath.Join(dir, prefabs.Dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

type trace struct {
	calls []string
}

// newCatalog registers a "trace" behaviour that records enter and exit with
// its "tag" arg.
func newCatalog(tr *trace) *flow.Catalog {
	c := flow.NewCatalog(flow.WithLogger(logger.Discard()))
	c.Register("trace", func(ctx flow.BuildContext, args map[string]any) (fsm.Behaviour[string], error) {
		tag, _ := args["tag"].(string)
		return &fsm.Funcs[string]{
			Enter: func(fsm.Transition[string]) error { tr.calls = append(tr.calls, "enter "+tag); return nil },
			Exit:  func(fsm.Transition[string]) error { tr.calls = append(tr.calls, "exit "+tag); return nil },
		}, nil
	})
	return c
}

const menu = `
name: menu
initial: main
states:
  - name: main
    behaviours:
      - {type: trace, args: {tag: main}}
      - {type: log, args: {message: main shown, level: debug}}
    transitions: [about, work]
  - name: about
    behaviours:
      - {type: trace, args: {tag: about}}
    transitions: [main]
  - name: work
    behaviours:
      - {type: trace, args: {tag: work}}
    transitions: [main]
`

func TestCompile_Menu(t *testing.T) {
	writeFlows(t, map[string]string{"menu.yaml": menu})
	tr := &trace{}
	f, err := newCatalog(tr).Load("menu.yaml")
	require.NoError(t, err)

	m := f.Machine
	assert.Equal(t, "menu", m.Name())
	assert.Equal(t, []string{"main", "about", "work"}, m.States())

	require.NoError(t, f.Start())
	require.NoError(t, m.TransitionTo("about"))
	require.ErrorIs(t, m.TransitionTo("work"), fsm.ErrInvalidTransition)
	require.NoError(t, m.TransitionTo("main"))

	assert.Equal(t, []string{"enter main", "exit main", "enter about", "exit about", "enter main"}, tr.calls)
}

func TestCompile_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		spec    prefabs.FlowSpec
		unknown bool
		msg     string
	}{
		{
			name: "no states",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a"},
			msg:  "no states",
		},
		{
			name: "missing initial",
			spec: prefabs.FlowSpec{Name: "x", States: []prefabs.FlowStateSpec{{Name: "a"}}},
			msg:  "no initial state",
		},
		{
			name: "unknown initial",
			spec: prefabs.FlowSpec{Name: "x", Initial: "b", States: []prefabs.FlowStateSpec{{Name: "a"}}},
			msg:  `initial: fsm: get state "b": unknown state`,
		},
		{
			name: "duplicate state",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{{Name: "a"}, {Name: "a"}}},
			msg:  "duplicate state",
		},
		{
			name: "unnamed state",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{{Name: "a"}, {}}},
			msg:  "state 1 has no name",
		},
		{
			name: "dangling transition",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{{Name: "a", Transitions: []string{"b"}}}},
			msg:  `state "a": transition`,
		},
		{
			name: "unknown behaviour",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{
				{Name: "a", Behaviours: []prefabs.BehaviourSpec{{Type: "teleport"}}},
			}},
			unknown: true,
			msg:     `unknown behaviour "teleport"`,
		},
		{
			name: "after needs a transition",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{
				{Name: "a", Behaviours: []prefabs.BehaviourSpec{{Type: "after", Args: map[string]any{"ticks": 3, "to": "b"}}}},
			}},
			msg: `"b" is not a transition of "a"`,
		},
		{
			name: "bad log level",
			spec: prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{
				{Name: "a", Behaviours: []prefabs.BehaviourSpec{{Type: "log", Args: map[string]any{"level": "loud"}}}},
			}},
			msg: "parse level",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := newCatalog(&trace{}).Compile(c.spec)
			require.Error(t, err)
			if c.unknown {
				require.ErrorIs(t, err, flow.ErrUnknownBehaviour)
			}
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestCompile_ReportsEveryProblem(t *testing.T) {
	spec := prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{
		{Name: "a", Transitions: []string{"missing"}, Behaviours: []prefabs.BehaviourSpec{{Type: "nope"}}},
	}}
	_, err := newCatalog(&trace{}).Compile(spec)
	require.ErrorIs(t, err, flow.ErrInvalidSpec)
	require.ErrorIs(t, err, flow.ErrUnknownBehaviour)
}

func TestAfter(t *testing.T) {
	spec := prefabs.FlowSpec{Name: "timer", Initial: "wait", States: []prefabs.FlowStateSpec{
		{
			Name:        "wait",
			Transitions: []string{"done"},
			Behaviours:  []prefabs.BehaviourSpec{{Type: "after", Args: map[string]any{"ticks": 3, "to": "done"}}},
		},
		{Name: "done", Transitions: []string{"wait"}},
	}}
	f, err := newCatalog(&trace{}).Compile(spec)
	require.NoError(t, err)
	m := f.Machine
	require.NoError(t, f.Start())

	for range 2 {
		require.NoError(t, m.Update())
	}
	cur, _ := m.Current()
	assert.Equal(t, "wait", cur)
	require.NoError(t, m.Update())
	cur, _ = m.Current()
	assert.Equal(t, "done", cur)

	// The counter restarts on every entry.
	require.NoError(t, m.TransitionTo("wait"))
	require.NoError(t, m.Update())
	cur, _ = m.Current()
	assert.Equal(t, "wait", cur)
}

const parent = `
name: parent
initial: menu
states:
  - name: menu
    transitions: [play]
  - name: play
    behaviours:
      - type: nested
        args:
          flow: child.yaml
          exit_on: {end: menu}
    transitions: [menu]
`

const child = `
name: child
initial: start
states:
  - name: start
    behaviours:
      - {type: trace, args: {tag: start}}
      - {type: after, args: {ticks: 1, to: end}}
    transitions: [end]
  - name: end
    behaviours:
      - {type: trace, args: {tag: end}}
`

func TestNested(t *testing.T) {
	writeFlows(t, map[string]string{"parent.yaml": parent, "child.yaml": child})
	tr := &trace{}
	f, err := newCatalog(tr).Load("parent.yaml")
	require.NoError(t, err)
	m := f.Machine

	require.NoError(t, f.Start())
	require.NoError(t, m.TransitionTo("play"))
	assert.Equal(t, []string{"enter start"}, tr.calls)

	// First update moves the child to end, which requests menu.
	require.NoError(t, m.Update())
	cur, _ := m.Current()
	assert.Equal(t, "menu", cur)
	assert.Equal(t, []string{"enter start", "exit start", "enter end", "exit end"}, tr.calls)
}

func TestNested_Cycle(t *testing.T) {
	writeFlows(t, map[string]string{"loop.yaml": `
name: loop
initial: a
states:
  - name: a
    behaviours:
      - {type: nested, args: {flow: loop.yaml}}
`})
	_, err := newCatalog(&trace{}).Load("loop.yaml")
	require.ErrorIs(t, err, flow.ErrInvalidSpec)
	assert.Contains(t, err.Error(), "nests itself")
}

func TestScriptBehaviour(t *testing.T) {
	writeFlows(t, map[string]string{
		"scripted.yaml": `
name: scripted
initial: intro
states:
  - name: intro
    behaviours:
      - {type: script, args: {file: intro.tengo, ticks: 2, next: play}}
    transitions: [play]
  - name: play
`,
	})
	f, err := newCatalog(&trace{}).Load("scripted.yaml")
	require.NoError(t, err)
	require.NoError(t, f.Start())
	require.NoError(t, f.Machine.Update())
	require.NoError(t, f.Machine.Update())
	cur, _ := f.Machine.Current()
	assert.Equal(t, "play", cur)

	_, err = newCatalog(&trace{}).Compile(prefabs.FlowSpec{Name: "x", Initial: "a", States: []prefabs.FlowStateSpec{
		{Name: "a", Behaviours: []prefabs.BehaviourSpec{{Type: "script"}}},
	}})
	require.ErrorIs(t, err, flow.ErrInvalidSpec)
}

func TestCatalog_Types(t *testing.T) {
	c := newCatalog(&trace{})
	assert.Equal(t, []string{"after", "log", "nested", "script", "trace"}, c.Types())
	assert.Panics(t, func() { c.Register("", nil) })
}
