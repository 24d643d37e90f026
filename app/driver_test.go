package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/appflow/app"
	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

func useRegistry(t *testing.T) *fsm.Registry {
	t.Helper()
	r := fsm.NewRegistry()
	prev := fsm.Activate(r)
	t.Cleanup(func() { fsm.Activate(prev) })
	return r
}

// demo runs the embedded app flow the way the game loop does.
type demo struct {
	*fakes
	kind      flow.Kind
	driver    *app.Driver
	scheduler *app.Scheduler
}

func newDemo(t *testing.T) *demo {
	t.Helper()
	t.Chdir(t.TempDir())
	useRegistry(t)
	f := newFakes()
	kind := f.catalog().Kind("app.yaml")
	driver := app.NewDriver(kind)
	_, err := driver.Start("")
	require.NoError(t, err)
	return &demo{fakes: f, kind: kind, driver: driver, scheduler: app.NewScheduler(f.actions, driver)}
}

func (d *demo) tick(t *testing.T, n int) {
	t.Helper()
	for range n {
		require.NoError(t, d.scheduler.Update())
	}
}

func (d *demo) press(t *testing.T, act app.Action) {
	t.Helper()
	d.actions.Push(act)
	d.tick(t, 1)
}

func (d *demo) current(t *testing.T) string {
	t.Helper()
	cur, ok := d.driver.Current()
	require.True(t, ok)
	return cur
}

// child returns the machine nested in the work state.
func (d *demo) child(t *testing.T) *fsm.Machine[string] {
	t.Helper()
	m := d.kind.MustGet()
	work, err := m.GetState("work")
	require.NoError(t, err)
	for _, b := range work.Behaviours() {
		if n, ok := b.(*fsm.Nested[string, string]); ok {
			return n.Child()
		}
	}
	t.Fatal("work has no nested flow")
	return nil
}

func (d *demo) childState(t *testing.T) string {
	t.Helper()
	child := d.child(t)
	require.NotNil(t, child)
	cur, _ := child.Current()
	return cur
}

func TestDemo_About(t *testing.T) {
	d := newDemo(t)
	assert.Equal(t, "main", d.current(t))
	assert.Equal(t, []string{"show main"}, d.views.calls)

	d.press(t, app.ActionAbout)
	assert.Equal(t, "about", d.current(t))
	assert.Equal(t, []string{"appflow: a small state machine driven demo"}, d.clipboard.texts)

	// Work is not reachable from about.
	d.press(t, app.ActionWork)
	assert.Equal(t, "about", d.current(t))

	d.press(t, app.ActionBack)
	assert.Equal(t, "main", d.current(t))
	assert.Equal(t, []string{"show main", "hide main", "show about", "hide about", "show main"}, d.views.calls)
	assert.Equal(t, 1, d.actions.Subscribers())
}

func TestDemo_Experience(t *testing.T) {
	d := newDemo(t)
	d.press(t, app.ActionWork)
	assert.Equal(t, "work", d.current(t))
	assert.NotNil(t, d.stage.scene)
	assert.Equal(t, "connection", d.childState(t))
	assert.Equal(t, "Connecting...", d.captions.text)

	d.tick(t, 59)
	assert.Equal(t, "connection", d.childState(t))
	d.tick(t, 1)
	assert.Equal(t, "idle", d.childState(t))
	assert.Equal(t, 2, d.actions.Subscribers())

	d.press(t, app.ActionConfirm)
	assert.Equal(t, "intro", d.childState(t))
	assert.Equal(t, "Intro", d.captions.text)

	d.tick(t, 119)
	assert.Equal(t, "intro", d.childState(t))
	d.tick(t, 1)
	assert.Equal(t, "play", d.childState(t))

	d.press(t, app.ActionConfirm)
	assert.Equal(t, "outro", d.childState(t))

	d.tick(t, 89)
	assert.Equal(t, "work", d.current(t))
	d.tick(t, 1)
	assert.Equal(t, "main", d.current(t))
	assert.Nil(t, d.child(t))
	assert.Nil(t, d.stage.scene)
	assert.Empty(t, d.captions.text)
	assert.Equal(t, 1, d.actions.Subscribers())
}

func TestDemo_BackStopsExperience(t *testing.T) {
	d := newDemo(t)
	d.press(t, app.ActionWork)
	d.tick(t, 60)
	child := d.child(t)
	require.NotNil(t, child)

	d.press(t, app.ActionBack)
	assert.Equal(t, "main", d.current(t))
	assert.False(t, child.Started())
	assert.Nil(t, d.stage.scene)

	// The experience starts over on the next visit.
	d.press(t, app.ActionWork)
	assert.Equal(t, "connection", d.childState(t))
}

func TestDriver_StartIn(t *testing.T) {
	t.Chdir(t.TempDir())
	useRegistry(t)
	f := newFakes()
	driver := app.NewDriver(f.catalog().Kind("app.yaml"))
	m, err := driver.Start("about")
	require.NoError(t, err)
	cur, _ := m.Current()
	assert.Equal(t, "about", cur)

	again, err := driver.Start("main")
	require.NoError(t, err)
	assert.Same(t, m, again)
}

// Without a registry every lookup builds a fresh machine, so there is never
// a running one to tick.
func TestDriver_NoRegistry(t *testing.T) {
	t.Chdir(t.TempDir())
	prev := fsm.Deactivate()
	t.Cleanup(func() { fsm.Activate(prev) })
	driver := app.NewDriver(newFakes().catalog().Kind("app.yaml"))
	require.NoError(t, driver.Update())
	_, ok := driver.Current()
	assert.False(t, ok)
}

const toggle = `
name: toggle
initial: idle
states:
  - name: idle
    transitions: [busy]
  - name: busy
    transitions: [idle]
`

func TestReloader(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(prefabs.Dir, 0o755))
	file := filepath.Join(prefabs.Dir, "toggle.yaml")
	require.NoError(t, os.WriteFile(file, []byte(toggle), 0o644))
	useRegistry(t)

	kind := newFakes().catalog().Kind("toggle.yaml")
	driver := app.NewDriver(kind)
	old, err := driver.Start("")
	require.NoError(t, err)
	require.NoError(t, old.TransitionTo("busy"))

	changes := make(chan prefabs.Change, 4)
	r := app.NewReloader(changes, kind, logger.Discard())
	require.NoError(t, r.Update())
	assert.Zero(t, r.Reloads())

	changes <- prefabs.Change{Path: file, Name: "toggle.yaml"}
	changes <- prefabs.Change{Path: file, Name: "toggle.yaml"}
	require.NoError(t, r.Update())
	assert.Equal(t, 1, r.Reloads())
	next := kind.MustGet()
	assert.NotSame(t, old, next)
	cur, _ := next.Current()
	assert.Equal(t, "busy", cur)

	// A broken file is logged and the running machine kept.
	require.NoError(t, os.WriteFile(file, []byte("name: toggle\nstates: [\n"), 0o644))
	changes <- prefabs.Change{Path: file, Name: "toggle.yaml"}
	require.NoError(t, r.Update())
	assert.Equal(t, 1, r.Reloads())
	assert.Same(t, next, kind.MustGet())

	close(changes)
	require.NoError(t, r.Update())
	require.NoError(t, r.Update())
}
