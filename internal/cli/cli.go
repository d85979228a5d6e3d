package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/internal/config"
	"github.com/flexgantt/flexgantt/pkg/buildinfo"
	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/store"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Output formats for commands that print rows.
const (
	formatTable = "table"
	formatJSON  = "json"
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "flexgantt builds grouped Gantt rows from product tasks",
		Long: `flexgantt groups product development tasks into nested Gantt rows.

Rows are the cartesian product of the distinct values of the chosen
attributes (product type, density, ...). Overlapping tasks in a row are
stacked into lanes, and every task is positioned on a yearly timeline.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flexgantt/config.toml)")

	root.AddCommand(c.rowsCommand())
	root.AddCommand(c.positionCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment. The configured log level
// only raises verbosity; --verbose always wins.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && level < c.Logger.GetLevel() {
		c.Logger.SetLevel(level)
	}
	c.Logger.Debug("loaded config", "store", cfg.Database.Store, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache whose directory
// cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:    c.Config.Cache.RedisURL,
			Prefix: c.Config.Cache.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open file cache: %w", err)
	}
	return fc, nil
}

// openStore connects to the configured task store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.Database.StoreConfig())
}

// pipelineOptions returns the configured build defaults.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := c.Config.Gantt.PipelineOptions()
	opts.Registry = task.DefaultRegistry()
	opts.Logger = c.Logger
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/flexgantt/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Report Helpers
// =============================================================================

// buildFlags are the sizing and caching flags shared by commands that build
// rows.
type buildFlags struct {
	laneHeight int
	padding    int
	noCache    bool
	refresh    bool
	fromStore  bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.laneHeight, "lane-height", 0, "lane height in pixels (default from config)")
	cmd.Flags().IntVar(&f.padding, "padding", 0, "vertical row padding in pixels, -1 for none (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even when a cached result exists")
	cmd.Flags().BoolVar(&f.fromStore, "from-store", false, "use tasks from the configured store instead of the report")
}

// options merges the flags that were set over the configured defaults.
func (f *buildFlags) options(c *CLI, cmd *cobra.Command) pipeline.Options {
	opts := c.pipelineOptions()
	if cmd.Flags().Changed("lane-height") {
		opts.LaneHeight = f.laneHeight
	}
	if cmd.Flags().Changed("padding") {
		opts.VerticalPadding = f.padding
	}
	opts.Refresh = f.refresh
	return opts
}

// loadReport reads a report file and, with fromStore, replaces its tasks
// with the stored ones.
func (c *CLI) loadReport(ctx context.Context, path string, fromStore bool) (*report.Report, error) {
	rep, err := report.Import(path)
	if err != nil {
		return nil, err
	}
	if !fromStore {
		return rep, nil
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	tasks, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	rep.Tasks = tasks
	return rep, nil
}

// selectGroup returns the row group with id, or the first group when id is
// empty.
func selectGroup(rep *report.Report, id string) (gantt.RowGroup, error) {
	if len(rep.Structure) == 0 {
		return gantt.RowGroup{}, errors.New(errors.ErrCodeInvalidConfiguration, "report has no row groups")
	}
	if id == "" {
		return rep.Structure[0], nil
	}
	g, ok := rep.Group(id)
	if !ok {
		return gantt.RowGroup{}, errors.New(errors.ErrCodeNotFound, "row group %q not found", id)
	}
	return g, nil
}

// validateFormat checks an output format flag.
func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (must be table or json)", format)
}
