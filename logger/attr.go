package logger

import "log/slog"

// Component records the emitting package or subsystem under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Machine records a state machine name under "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// State records a state label under "state".
func State(label string) slog.Attr {
	return slog.String("state", label)
}

func From(label string) slog.Attr {
	return slog.String("from", label)
}

func To(label string) slog.Attr {
	return slog.String("to", label)
}

// Flow records the flow spec file a machine was built from.
func Flow(name string) slog.Attr {
	return slog.String("flow", name)
}

func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}
