package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/internal/api"
	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/observability"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
)

// apiCachePrefix separates API cache entries from CLI entries when both
// share a Redis instance.
const apiCachePrefix = "api:"

// serveCommand creates the serve command that runs the REST API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		port      int
		backend   string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Long: `Run the REST API.

The server exposes task CRUD under /api/tasks, row building under
/api/gantt and Prometheus metrics under /metrics. It stops gracefully on
SIGINT or SIGTERM.

The store is chosen by the config file or the environment: DATABASE_URL
selects Postgres, MONGO_URI selects MongoDB, otherwise tasks live in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				c.Config.Server.Port = port
			}
			if backend != "" {
				c.Config.Database.Store = backend
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), noCache, !noMetrics)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config, 6001)")
	cmd.Flags().StringVar(&backend, "store", "", "task store: memory, postgres, mongo")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache, metrics bool) error {
	logger := loggerFromContext(ctx)
	cfg := c.Config

	st, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, apiCachePrefix), logger)
	defer runner.Close()

	apiCfg := api.Config{
		Store:   st,
		Runner:  runner,
		Options: c.pipelineOptions(),
		Logger:  logger,
		Port:    cfg.Server.Port,
	}
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		apiCfg.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv := api.New(apiCfg)
	printSuccess("%s listening on %s", api.ServiceName, StyleHighlight.Render(cfg.Server.Addr()))
	printDetail("Store: %s · Cache: %s", cfg.Database.Store, cacheLabel(cfg.Cache.Backend, noCache))
	return srv.ListenAndServe(ctx, cfg.Server.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}

// cacheLabel describes the cache in effect.
func cacheLabel(backend string, disabled bool) string {
	if disabled || backend == "" {
		return "none"
	}
	return backend
}
