// Package flow builds state machines from YAML flow specs. Each behaviour in
// a spec names a Factory registered in a Catalog.
package flow

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
)

var (
	ErrInvalidSpec      = errors.New("flow: invalid spec")
	ErrUnknownBehaviour = errors.New("flow: unknown behaviour")
)

// BuildContext is handed to a Factory for every behaviour it builds.
type BuildContext struct {
	Flow    string
	Machine *fsm.Machine[string]
	State   *fsm.State[string]
	Logger  *slog.Logger
	Catalog *Catalog

	// files holds the flow files being compiled, outermost first.
	files []string
}

// Factory builds one behaviour for ctx.State from its spec args.
type Factory func(ctx BuildContext, args map[string]any) (fsm.Behaviour[string], error)

type Option func(*Catalog)

func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Catalog maps behaviour type names to factories. It is safe for concurrent
// use.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *slog.Logger
}

// NewCatalog returns a catalog with the built-in behaviours registered: log,
// after, script and nested.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		factories: make(map[string]Factory),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("flow"))
	c.Register("log", newLog)
	c.Register("after", newAfter)
	c.Register("script", newScript)
	c.Register("nested", newNested)
	return c
}

// Register adds or replaces the factory for name.
func (c *Catalog) Register(name string, f Factory) *Catalog {
	if name == "" || f == nil {
		panic("flow: register needs a name and a factory")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = f
	return c
}

func (c *Catalog) factory(name string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	return f, ok
}

// Types lists registered behaviour types, sorted.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Logger() *slog.Logger { return c.logger }
