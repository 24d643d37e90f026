package app

import "fmt"

// System is ticked once per frame by a Scheduler.
type System interface {
	Update() error
}

// SystemFunc adapts a function to a System.
type SystemFunc func() error

func (f SystemFunc) Update() error { return f() }

// Scheduler runs systems in the order they were added.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs every system and stops at the first error.
func (s *Scheduler) Update() error {
	for i, system := range s.systems {
		if err := system.Update(); err != nil {
			return fmt.Errorf("app: system %d (%T): %w", i, system, err)
		}
	}
	return nil
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
