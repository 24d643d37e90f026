package fsm_test

import (
	"errors"
	"fmt"

	"github.com/milk9111/appflow/fsm"
)

type announce struct {
	fsm.Base[string]
}

func (a announce) OnEnter(t fsm.Transition[string]) error {
	fmt.Println("enter", a.StateLabel(), "from", t)
	return nil
}

func Example() {
	m := fsm.New[string](fsm.WithName("app"))
	for _, s := range []struct {
		id      string
		targets []string
	}{
		{"main", []string{"about", "work"}},
		{"about", []string{"main"}},
		{"work", []string{"main"}},
	} {
		st := m.MustAddState(s.id).AddTransition(s.targets...)
		st.AddBehaviour(announce{fsm.NewBase(st)})
	}

	_ = m.Start("main")
	_ = m.TransitionTo("about")
	err := m.TransitionTo("work")
	fmt.Println(errors.Is(err, fsm.ErrInvalidTransition), err)

	cur, _ := m.Current()
	fmt.Println("current", cur)
	// Output:
	// enter main from start -> main
	// enter about from main -> about
	// true fsm: invalid transition from "about" to "work"
	// current about
}

func ExampleKind() {
	prev := fsm.Activate(fsm.NewRegistry())
	defer fsm.Activate(prev)

	app := fsm.NewKind("app", func() (*fsm.Machine[string], error) {
		m := fsm.New[string]()
		m.MustAddState("main")
		return m, nil
	})

	a, _ := app.Get()
	b, _ := app.Get()
	fmt.Println(a == b)
	// Output: true
}
