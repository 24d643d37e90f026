package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/appflow/app"
	"github.com/milk9111/appflow/common"
	"github.com/milk9111/appflow/logger"
)

func main() {
	cfg, err := app.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.SetAsDefault(log)

	if cfg.BaseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("appflow")
	ebiten.SetTPS(common.TPS)

	game, err := NewGame(cfg, log)
	if err != nil {
		log.Error("start failed", logger.Flow(cfg.Flow), logger.Error(err))
		os.Exit(1)
	}
	err = ebiten.RunGame(game)
	game.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("game stopped", logger.Error(err))
		os.Exit(1)
	}
}
