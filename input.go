package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/appflow/app"
)

type binding struct {
	action  app.Action
	keys    []ebiten.Key
	buttons []ebiten.StandardGamepadButton
}

var bindings = []binding{
	{action: app.ActionAbout, keys: []ebiten.Key{ebiten.KeyA, ebiten.Key1}, buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightLeft}},
	{action: app.ActionWork, keys: []ebiten.Key{ebiten.KeyW, ebiten.Key2}, buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightTop}},
	{action: app.ActionConfirm, keys: []ebiten.Key{ebiten.KeyEnter, ebiten.KeySpace}, buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightBottom}},
	{action: app.ActionBack, keys: []ebiten.Key{ebiten.KeyEscape, ebiten.KeyBackspace}, buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightRight}},
	{action: app.ActionQuit, keys: []ebiten.Key{ebiten.KeyF12}, buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonCenterRight}},
}

// Input turns key and gamepad presses into actions.
type Input struct {
	actions *app.Actions
	gamepad []ebiten.GamepadID
}

func NewInput(actions *app.Actions) *Input {
	return &Input{actions: actions}
}

func (i *Input) Update() error {
	i.gamepad = ebiten.AppendGamepadIDs(i.gamepad[:0])
	for _, b := range bindings {
		if i.justPressed(b) {
			i.actions.Push(b.action)
		}
	}
	return nil
}

func (i *Input) justPressed(b binding) bool {
	for _, k := range b.keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	// Only the first gamepad is read.
	if len(i.gamepad) == 0 {
		return false
	}
	gid := i.gamepad[0]
	for _, btn := range b.buttons {
		if inpututil.IsStandardGamepadButtonJustPressed(gid, btn) {
			return true
		}
	}
	return false
}
