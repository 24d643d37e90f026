package app_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/appflow/app"
)

func TestActions_Dispatch(t *testing.T) {
	a := app.NewActions()
	var got []app.Action
	unsubscribe := a.Subscribe(func(act app.Action) { got = append(got, act) })

	a.Push(app.ActionWork)
	a.Push("")
	a.Push(app.ActionBack)
	assert.Equal(t, 2, a.Dispatch())
	assert.Equal(t, []app.Action{app.ActionWork, app.ActionBack}, got)
	assert.Zero(t, a.Dispatch())

	unsubscribe()
	unsubscribe()
	assert.Zero(t, a.Subscribers())
	a.Push(app.ActionQuit)
	require.NoError(t, a.Update())
	assert.Len(t, got, 2)
}

func TestActions_SubscribersAddedDuringDispatch(t *testing.T) {
	a := app.NewActions()
	var late int
	a.Subscribe(func(app.Action) {
		a.Subscribe(func(app.Action) { late++ })
	})
	a.Push(app.ActionConfirm)
	a.Push(app.ActionConfirm)
	a.Dispatch()
	assert.Zero(t, late)
	assert.Equal(t, 3, a.Subscribers())
}

func TestActions_Drain(t *testing.T) {
	var nilActions *app.Actions
	nilActions.Push(app.ActionAbout)
	assert.Nil(t, nilActions.Drain())

	a := app.NewActions()
	a.Push(app.ActionAbout)
	assert.Equal(t, []app.Action{app.ActionAbout}, a.Drain())
	assert.Nil(t, a.Drain())
}

func TestScheduler(t *testing.T) {
	var order []string
	s := app.NewScheduler(app.SystemFunc(func() error {
		order = append(order, "a")
		return nil
	}))
	s.Add(nil)
	s.Add(app.SystemFunc(func() error {
		order = append(order, "b")
		return nil
	}))
	require.NoError(t, s.Update())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Len(t, s.Systems(), 2)

	boom := errors.New("boom")
	s.Add(app.SystemFunc(func() error { return boom }))
	s.Add(app.SystemFunc(func() error {
		order = append(order, "never")
		return nil
	}))
	err := s.Update()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "system 2")
	assert.NotContains(t, order, "never")
}
