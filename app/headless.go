package app

import "image/color"

// Headless returns collaborators that accept every view and draw nothing.
// Flows compiled against it can be checked and ticked without a window.
func Headless() Deps {
	return Deps{
		Actions:  NewActions(),
		Views:    headless{},
		Captions: headless{},
		Stage:    headless{},
	}
}

type headless struct{}

func (headless) Show(string) error { return nil }
func (headless) Hide(string) {}
func (headless) SetCaption(string, color.Color) {}
func (headless) ClearCaption() {}
func (headless) SetScene(*Scene) {}
