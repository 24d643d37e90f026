// Package app holds the collaborators the demo's flows drive: input actions,
// views, physics scenes and the clipboard, plus the behaviour factories that
// bind them into a flow catalog.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/milk9111/appflow/logger"
)

// Config holds demo configuration.
type Config struct {
	Flow        string `env:"APPFLOW_FLOW" envDefault:"app.yaml"`
	Initial     string `env:"APPFLOW_INITIAL"`
	Watch       bool   `env:"APPFLOW_WATCH"`
	Clipboard   bool   `env:"APPFLOW_CLIPBOARD" envDefault:"true"`
	BaseMonitor bool   `env:"APPFLOW_BASE_MONITOR"`
	Width       int    `env:"APPFLOW_WIDTH" envDefault:"1280"`
	Height      int    `env:"APPFLOW_HEIGHT" envDefault:"720"`
	LogLevel    string `env:"APPFLOW_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"APPFLOW_LOG_FORMAT" envDefault:"text"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("app: parse env: %w", err)
	}
	fs.StringVar(&cfg.Flow, "flow", cfg.Flow, "flow file in prefabs/ to run")
	fs.StringVar(&cfg.Initial, "state", cfg.Initial, "start in this state instead of the flow's initial state")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload flows and scripts when files under prefabs/ change")
	fs.BoolVar(&cfg.Clipboard, "clipboard", cfg.Clipboard, "allow flows to write to the system clipboard")
	fs.BoolVar(&cfg.BaseMonitor, "m", cfg.BaseMonitor, "use base monitor instead of primary (for multi-monitor setups)")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "window height")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Flow == "" {
		errs = append(errs, errors.New("flow is required"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("app: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the demo logger writing to w.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(w),
		logger.WithAttr(logger.Component("appflow")),
	), nil
}
