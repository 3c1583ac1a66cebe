package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shopfloor/internal/metrics"
	"github.com/matzehuels/shopfloor/internal/server"
	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/config"
)

type serveOpts struct {
	addr      string
	autosave  bool
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout editor over HTTP",
		Long: `Serve a layout editing session over a JSON API.

Browser hosts post pointer events to /api/v1/layout/pointer and read the
layout back from /api/v1/layout. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.autosave, "autosave", false, "persist after every change (overrides server.autosave)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if cmd.Flags().Changed("autosave") {
		cfg.Server.Autosave = opts.autosave
	}

	var m *metrics.Metrics
	if !opts.noMetrics {
		m = metrics.New()
		m.Register()
	}

	sess, err := c.openSession(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Editor:          sess.editor,
		Catalog:         sess.catalog,
		Store:           sess.store,
		Name:            cfg.Store.Name,
		Autosave:        cfg.Server.Autosave,
		Logger:          c.Logger,
		Metrics:         m,
	})

	if cfg.Machines.File != "" && cfg.Machines.Watch {
		go c.watchCatalog(ctx, cfg.Machines.File, srv.SetCatalog)
	}

	printInfo("Serving %s on %s", StyleValue.Render(cfg.Store.Name), StyleValue.Render(cfg.Server.Addr))
	printDetail("backend: %s, autosave: %v", cfg.Store.Backend, cfg.Server.Autosave)
	if cfg.Store.Backend == config.BackendNone {
		printWarning("Store backend is %q; the layout will not persist", config.BackendNone)
	}
	return srv.Start(ctx)
}

// watchCatalog hot-reloads the machine file. A file that fails to parse is
// logged and the previous catalog stays in use.
func (c *CLI) watchCatalog(ctx context.Context, path string, apply func(*catalog.Catalog)) {
	err := catalog.Watch(ctx, path, func(cat *catalog.Catalog, err error) {
		if err != nil {
			c.Logger.Warn("catalog reload failed", "path", path, "err", err)
			return
		}
		apply(cat)
		c.Logger.Info("catalog reloaded", "path", path, "machines", cat.Len())
	})
	if err != nil {
		c.Logger.Error("catalog watch stopped", "path", path, "err", err)
	}
}
