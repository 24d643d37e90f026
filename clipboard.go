package main

import (
	"fmt"

	"golang.design/x/clipboard"
)

// systemClipboard writes to the OS clipboard.
type systemClipboard struct{}

// newClipboard fails when the platform has no clipboard, for example a Linux
// session without an X display.
func newClipboard() (systemClipboard, error) {
	if err := clipboard.Init(); err != nil {
		return systemClipboard{}, fmt.Errorf("clipboard: %w", err)
	}
	return systemClipboard{}, nil
}

func (systemClipboard) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
