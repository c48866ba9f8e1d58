package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	cfg "go.hackfix.me/lhost/app/config"
	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Option is a function that allows configuring the application.
type Option func(*App)

// WithBackend sets the discovery backend, overriding the one selected by the
// CLI or the configuration file.
func WithBackend(b dtypes.Backend) Option {
	return func(app *App) {
		app.ctx.Backend = b
	}
}

// WithConfig sets the configuration object. The configuration file isn't
// read if this is set.
func WithConfig(cfg *cfg.Config) Option {
	return func(app *App) {
		app.ctx.Config = cfg
	}
}

// WithContext sets the main context.
func WithContext(ctx context.Context) Option {
	return func(app *App) {
		app.ctx.Ctx = ctx
	}
}

// WithFDs sets the output file descriptors used by the application.
func WithFDs(stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdout = stdout
		app.ctx.Stderr = stderr
	}
}

// WithFS sets the filesystem used by the application.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) {
		app.ctx.FS = fs
	}
}

// WithLogger initializes the logger used by the application. Logs are written
// to stderr, since stdout is reserved for results. It must be passed after
// WithFDs.
func WithLogger(isStderrTTY bool) Option {
	return func(app *App) {
		lvl := &slog.LevelVar{}
		lvl.Set(slog.LevelInfo)
		logger := slog.New(
			tint.NewHandler(app.ctx.Stderr, &tint.Options{
				Level:      lvl,
				NoColor:    !isStderrTTY,
				TimeFormat: "2006-01-02 15:04:05.000",
			}),
		)
		app.logLevel = lvl
		app.ctx.Logger = logger
		slog.SetDefault(logger)
	}
}
