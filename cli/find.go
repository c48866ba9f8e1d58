package cli

import (
	"fmt"
	"log/slog"

	"go.hackfix.me/lhost/app/config"
	actx "go.hackfix.me/lhost/app/context"
	"go.hackfix.me/lhost/discovery"
	dtypes "go.hackfix.me/lhost/discovery/types"
	"go.hackfix.me/lhost/filter"
	"go.hackfix.me/lhost/render"
)

// Find lists local processes listening on TCP ports that match a query.
type Find struct {
	//nolint:lll // Long struct tags are unavoidable.
	Query   string `arg:"" optional:"" default:".*" help:"Case-insensitive regular expression matched against the name, PID, port, working directory and arguments of each process."`
	Format  string `default:"xml" enum:"xml,json,table" help:"Output format. Valid values: ${enum} \n xml, json: Alfred script filter results; table: plain text for terminals"`
	Backend string `help:"Discovery backend. Valid values: native, lsof. Default: native"`
}

// Run the find command.
func (c *Find) Run(appCtx *actx.Context) error {
	logger := appCtx.Logger.With("component", "find")

	format, err := render.FormatFromString(c.Format)
	if err != nil {
		return err
	}
	encode, err := render.NewEncoder(format)
	if err != nil {
		return err
	}

	backend, err := c.setupBackend(appCtx)
	if err != nil {
		return err
	}

	agg, err := discovery.NewAggregator(backend, aggregatorOptions(appCtx.Config, appCtx.Logger)...)
	if err != nil {
		return fmt.Errorf("failed creating the discovery aggregator: %w", err)
	}

	records, err := agg.Discover(appCtx.Ctx)
	if err != nil {
		return err
	}

	ignore := filter.DefaultIgnore()
	if appCtx.Config.Ignore.Valid {
		ignore = appCtx.Config.Ignore.V
	}
	f, err := filter.New(ignore)
	if err != nil {
		return err
	}

	query, err := filter.CompileQuery(c.Query)
	if err != nil {
		logger.Debug("matching query literally", "query", c.Query, "error", err)
		query = filter.LiteralQuery(c.Query)
	}

	matches := f.Apply(records, query)
	logger.Debug("filtered processes",
		"query", query.String(), "discovered", len(records), "matched", len(matches))

	if err = encode(appCtx.Stdout, render.Items(matches)); err != nil {
		return fmt.Errorf("failed writing results: %w", err)
	}

	return nil
}

//nolint:ireturn // The backend is selected at runtime.
func (c *Find) setupBackend(appCtx *actx.Context) (dtypes.Backend, error) {
	bt := dtypes.BackendNative
	if c.Backend != "" {
		var err error
		if bt, err = dtypes.BackendTypeFromString(c.Backend); err != nil {
			return nil, err
		}
	}

	if appCtx.Backend != nil {
		return appCtx.Backend, nil
	}

	backend, err := discovery.Setup(bt, appCtx.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed creating %s discovery backend: %w", bt, err)
	}

	return backend, nil
}

func aggregatorOptions(cfg *config.Config, logger *slog.Logger) []discovery.Option {
	opts := []discovery.Option{discovery.WithLogger(logger)}
	if cfg.ListTimeout.Valid {
		opts = append(opts, discovery.WithListTimeout(cfg.ListTimeout.V))
	}
	if cfg.InspectTimeout.Valid {
		opts = append(opts, discovery.WithInspectTimeout(cfg.InspectTimeout.V))
	}
	if cfg.Concurrency.Valid {
		opts = append(opts, discovery.WithConcurrency(cfg.Concurrency.V))
	}
	return opts
}
