package main

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/image/colornames"

	"github.com/milk9111/appflow/app"
	"github.com/milk9111/appflow/common"
	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

type Game struct {
	frames int
	quit   bool

	log       *slog.Logger
	kind      flow.Kind
	driver    *app.Driver
	scheduler *app.Scheduler
	views     *Views
	stage     *Stage
	watcher   *prefabs.Watcher
}

func NewGame(cfg app.Config, log *slog.Logger) (*Game, error) {
	fsm.Activate(fsm.NewRegistry())

	actions := app.NewActions()
	views := NewViews(actions)
	stage := &Stage{}
	deps := app.Deps{
		Actions:  actions,
		Views:    views,
		Captions: views,
		Stage:    stage,
	}
	if cfg.Clipboard {
		clip, err := newClipboard()
		if err != nil {
			log.Warn("clipboard unavailable", logger.Error(err))
		} else {
			deps.Clipboard = clip
		}
	}

	catalog := app.Register(flow.NewCatalog(flow.WithLogger(log)), deps)
	kind := catalog.Kind(cfg.Flow)
	driver := app.NewDriver(kind)
	if _, err := driver.Start(cfg.Initial); err != nil {
		return nil, err
	}

	g := &Game{
		log:    log,
		kind:   kind,
		driver: driver,
		views:  views,
		stage:  stage,
	}
	actions.Subscribe(func(act app.Action) {
		if act == app.ActionQuit {
			g.quit = true
		}
	})

	// Widgets push actions during their update, so views run before the
	// actions are dispatched.
	g.scheduler = app.NewScheduler(NewInput(actions), views, actions, driver)
	if cfg.Watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			log.Warn("watch disabled", logger.Error(err))
		} else {
			g.watcher = w
			go func() {
				for err := range w.Errors {
					log.Warn("watch error", logger.Error(err))
				}
			}()
			g.scheduler.Add(app.NewReloader(w.Events, kind, log))
		}
	}
	return g, nil
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.frames++
	return g.scheduler.Update()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	g.stage.Draw(screen)
	g.views.Draw(screen)

	state, _ := g.driver.Current()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("State: %s    FPS: %.2f", state, ebiten.ActualFPS()))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close stops the running flow, so its exit callbacks run, and the watcher.
func (g *Game) Close() {
	if m, err := g.kind.Get(); err == nil && m.Started() {
		if err := m.Stop(); err != nil {
			g.log.Warn("stop flow", logger.Error(err))
		}
	}
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}
