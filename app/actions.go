package app

// Action is a named user intent. Flows bind actions to transitions.
type Action string

const (
	ActionAbout   Action = "about"
	ActionWork    Action = "work"
	ActionBack    Action = "back"
	ActionConfirm Action = "confirm"
	ActionQuit    Action = "quit"
)

// Actions queues actions during a frame and hands them to subscribers in
// subscription order when dispatched.
type Actions struct {
	items []Action
	subs  []subscriber
	next  int
}

type subscriber struct {
	id int
	fn func(Action)
}

func NewActions() *Actions {
	return &Actions{}
}

// Push queues an action for the next Dispatch.
func (a *Actions) Push(act Action) {
	if a == nil || act == "" {
		return
	}
	a.items = append(a.items, act)
}

// Drain returns all queued actions and clears the queue.
func (a *Actions) Drain() []Action {
	if a == nil || len(a.items) == 0 {
		return nil
	}
	out := a.items
	a.items = nil
	return out
}

// Subscribe registers fn and returns a func that removes it. Removing twice
// is harmless.
func (a *Actions) Subscribe(fn func(Action)) (unsubscribe func()) {
	a.next++
	id := a.next
	a.subs = append(a.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range a.subs {
			if s.id == id {
				a.subs = append(a.subs[:i:i], a.subs[i+1:]...)
				return
			}
		}
	}
}

func (a *Actions) Subscribers() int { return len(a.subs) }

// Dispatch drains the queue and delivers each action to the subscribers
// present when Dispatch was called. It returns the number of actions.
func (a *Actions) Dispatch() int {
	items := a.Drain()
	if len(items) == 0 {
		return 0
	}
	subs := append([]subscriber(nil), a.subs...)
	for _, act := range items {
		for _, s := range subs {
			s.fn(act)
		}
	}
	return len(items)
}

// Update dispatches queued actions. It lets Actions run as a scheduler
// system.
func (a *Actions) Update() error {
	a.Dispatch()
	return nil
}
