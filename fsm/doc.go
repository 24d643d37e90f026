// Package fsm is a small generic finite state machine used to drive
// application and game flow (menu, about, experience and so on).
//
// A Machine owns a set of States keyed by a caller supplied identifier type,
// usually an enumeration:
//
//	type Screen int
//
//	const (
//		Main Screen = iota
//		About
//		Work
//	)
//
//	m := fsm.New[Screen](fsm.WithName("app"))
//	m.MustAddState(Main).AddTransition(About, Work)
//	m.MustAddState(About).AddTransition(Main)
//	m.MustAddState(Work).AddTransition(Main)
//
// Each State holds an ordered list of Behaviours. A behaviour is a unit of
// enter/exit logic (show a view, listen to input, play audio) and states are
// composed from several unrelated behaviours instead of being subclassed.
// Callbacks run in registration order on both enter and exit.
//
// # Transitions
//
// TransitionTo validates the target against the current state's allowed
// transitions, then runs every exit callback of the current state before any
// enter callback of the target. A rejected transition leaves the machine in
// its current state. Callbacks that fail abort the transition immediately; see
// CallbackError for what has and has not run at that point.
//
// Behaviours must not call TransitionTo from inside a callback. They use
// Request instead, and the pending transition is applied by the next Update.
//
// # Registry
//
// A Registry hands out one machine per Kind for the lifetime of the process.
// When no registry is active, Kind.Get builds a fresh, unregistered machine
// on every call, so code that relies on singleton semantics must run with a
// registry installed via Activate.
//
// # Concurrency
//
// Machines and States are not safe for concurrent use. Drive a machine from a
// single goroutine (typically the game loop) or serialise access externally.
// The Registry is safe for concurrent use.
package fsm
