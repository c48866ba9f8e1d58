package context

import (
	"context"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/lhost/app/config"
	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx    context.Context // global context
	FS     vfs.FileSystem  // filesystem
	Logger *slog.Logger    // global logger
	Config *config.Config

	// Backend overrides the discovery backend selected by configuration.
	Backend dtypes.Backend

	// Standard streams
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
}
