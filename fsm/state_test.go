package fsm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/appflow/fsm"
)

func TestState_Transitions(t *testing.T) {
	m := fsm.New[string]()
	s := m.MustAddState("idle")

	s.AddTransition("intro", "play").AddTransition("intro")
	assert.Equal(t, []string{"intro", "play"}, s.Transitions())
	assert.True(t, s.CanTransitionTo("intro"))
	assert.False(t, s.CanTransitionTo("finish"))

	got := s.Transitions()
	got[0] = "mutated"
	assert.Equal(t, []string{"intro", "play"}, s.Transitions())
}

func TestState_Accessors(t *testing.T) {
	m := fsm.New[screen]()
	s := m.MustAddState(workScreen)
	assert.Equal(t, workScreen, s.ID())
	assert.Equal(t, "Work", s.Label())
	assert.Same(t, m, s.Machine())

	b := fsm.NewBase(s)
	assert.Same(t, s, b.State())
	assert.Equal(t, "Work", b.StateLabel())
}

func TestState_AddBehaviourSkipsNil(t *testing.T) {
	m := fsm.New[string]()
	s := m.MustAddState("a")
	f := &fsm.Funcs[string]{}
	s.AddBehaviour(nil, f, nil)
	assert.Len(t, s.Behaviours(), 1)
}

func TestState_EnterExitOrder(t *testing.T) {
	var calls []string
	m := fsm.New[string]()
	s := m.MustAddState("a")
	for _, name := range []string{"view", "input", "audio"} {
		s.AddBehaviour(&fsm.Funcs[string]{
			Enter: func(fsm.Transition[string]) error { calls = append(calls, "enter "+name); return nil },
			Exit:  func(fsm.Transition[string]) error { calls = append(calls, "exit "+name); return nil },
		})
	}

	require.NoError(t, s.Enter(fsm.Transition[string]{To: "a", Initial: true}))
	require.NoError(t, s.Exit(fsm.Transition[string]{From: "a", Final: true}))
	assert.Equal(t, []string{
		"enter view", "enter input", "enter audio",
		"exit view", "exit input", "exit audio",
	}, calls)
}

func TestState_CallbackErrorStopsEarly(t *testing.T) {
	boom := errors.New("boom")
	ran := 0
	m := fsm.New[string]()
	s := m.MustAddState("a")
	s.AddBehaviour(
		&fsm.Funcs[string]{Enter: func(fsm.Transition[string]) error { ran++; return nil }},
		&fsm.Funcs[string]{Enter: func(fsm.Transition[string]) error { return boom }},
		&fsm.Funcs[string]{Enter: func(fsm.Transition[string]) error { ran++; return nil }},
	)

	err := s.Enter(fsm.Transition[string]{To: "a", Initial: true})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ran)
	assert.EqualError(t, err, `fsm: enter callback 1 of state "a": boom`)
}

func TestBase_RequestWithoutOwner(t *testing.T) {
	var b fsm.Base[string]
	assert.ErrorIs(t, b.Request("x"), fsm.ErrNotStarted)
	assert.NoError(t, b.OnEnter(fsm.Transition[string]{}))
	assert.NoError(t, b.OnExit(fsm.Transition[string]{}))
}

func TestTransition_String(t *testing.T) {
	cases := []struct {
		name string
		tr   fsm.Transition[string]
		want string
	}{
		{"initial", fsm.Transition[string]{To: "main", Initial: true}, "start -> main"},
		{"final", fsm.Transition[string]{From: "main", Final: true}, "main -> stop"},
		{"edge", fsm.Transition[string]{From: "main", To: "about"}, "main -> about"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.tr.String())
		})
	}
}
