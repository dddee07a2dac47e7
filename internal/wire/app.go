package wire

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mithrel/notecards/internal/config"
	"github.com/mithrel/notecards/internal/remote"
	"github.com/mithrel/notecards/internal/store"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg    *viper.Viper
	Remote *remote.Client
	Store  *store.Store

	logFile *os.File
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	if err := config.CheckConfigValidity(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app := &App{Cfg: cfg}
	if err := app.setupLogging(); err != nil {
		return nil, err
	}
	app.Remote = remote.New(cfg.GetString("remote.url"),
		remote.WithToken(cfg.GetString("remote.token")),
		remote.WithTimeout(config.RemoteTimeout(cfg)),
	)
	app.Store = store.New(app.Remote)
	log.Debugf("wire: remote %s", app.Remote.BaseURL())
	return app, nil
}

func (a *App) setupLogging() error {
	lvl, err := log.ParseLevel(strings.TrimSpace(a.Cfg.GetString("log.level")))
	if err != nil {
		lvl = log.WarnLevel
	}
	log.SetLevel(lvl)
	if path := strings.TrimSpace(a.Cfg.GetString("log.file")); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}
	return nil
}

// QuietLogs silences logging unless a log file is configured; used while the TUI owns the terminal.
func (a *App) QuietLogs() {
	if a.logFile == nil {
		log.SetOutput(io.Discard)
	}
}

func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
