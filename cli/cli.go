package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.hackfix.me/lhost/app/config"
	actx "go.hackfix.me/lhost/app/context"
)

// CLI is the command line interface of lhost.
type CLI struct {
	Find `embed:""`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: kong.ConfigFlag isn't used, since the configuration file isn't a
	// source of flag values.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the lhost configuration file.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("lhost"),
		kong.Description("Find local processes listening on TCP ports."),
		kong.UsageOnError(),
		kong.DefaultEnvars("LHOST"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
//
// A lone argument that starts with a dash, but isn't one of the CLI flags, is
// parsed as the query. Callers that can't rule out a query named like a flag,
// such as "--help", should pass it after "--".
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(c.queryArgs(args))
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

func (c *CLI) queryArgs(args []string) []string {
	if len(args) != 1 || args[0] == "--" || !strings.HasPrefix(args[0], "-") || c.isFlag(args[0]) {
		return args
	}

	return []string{"--", args[0]}
}

// isFlag returns true if arg names one of the CLI flags, with or without an
// inline value.
func (c *CLI) isFlag(arg string) bool {
	long, isLong := strings.CutPrefix(arg, "--")
	long, _, _ = strings.Cut(long, "=")
	for _, flag := range c.kong.Model.Flags {
		if isLong && long == flag.Name {
			return true
		}
		if !isLong && flag.Short != 0 && arg == "-"+string(flag.Short) {
			return true
		}
	}

	return false
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Backend == "" && cfg.Backend.Valid {
		c.Backend = string(cfg.Backend.V)
	}
}
