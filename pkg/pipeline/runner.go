package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/observability"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// Runner encapsulates row building with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ContentHash identifies the inputs of a row build. Task order is part of
// the hash because lane ties are broken by input order.
func ContentHash(tasks []task.Task, depths []gantt.Depth) (string, error) {
	sum, err := cache.HashJSON(struct {
		Tasks  []task.Task   `json:"tasks"`
		Depths []gantt.Depth `json:"depths"`
	}{tasks, depths})
	if err != nil {
		return "", fmt.Errorf("hash inputs: %w", err)
	}
	return sum, nil
}

// BuildRowsWithCacheInfo builds the rows of one row group with caching and
// returns cache hit info. The group's filters are applied first; when
// opts.Window is set every task carries its timeline position.
func (r *Runner) BuildRowsWithCacheInfo(ctx context.Context, tasks []task.Task, g gantt.RowGroup, opts Options) (*gantt.Model, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := ValidateGroup(g, opts.Registry); err != nil {
		return nil, false, err
	}

	filtered := g.Filters.Apply(tasks)
	hash, err := ContentHash(filtered, g.Depths)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.RowsKey(hash, opts.RowsKeyOpts())
	kind := cache.KeyKind(cacheKey)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var m gantt.Model
			if err := json.Unmarshal(data, &m); err == nil {
				observability.Cache().OnCacheHit(ctx, kind)
				return &m, true, nil // Cache hit
			}
			// If deserialization fails, fall through to rebuild
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, g.ID, len(filtered), len(g.Depths))
	start := time.Now()

	m, err := gantt.Build(filtered, g.Depths, opts.GanttOptions())
	if err == nil && opts.Window != nil {
		err = m.Place(*opts.Window)
	}
	if err != nil {
		hooks.OnBuildComplete(ctx, g.ID, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnBuildComplete(ctx, g.ID, len(m.Rows), len(m.Orphans), time.Since(start), nil)

	opts.Logger.Debug("built rows",
		"group", g.ID,
		"tasks", len(filtered),
		"rows", len(m.Rows),
		"duration", time.Since(start))
	if len(m.Orphans) > 0 {
		opts.Logger.Debug("tasks missing a grouping value",
			"group", g.ID,
			"orphans", len(m.Orphans))
	}

	// Cache the result
	if data, err := json.Marshal(m); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRows); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
	}

	return m, false, nil // Cache miss
}

// BuildRows is a convenience wrapper that calls BuildRowsWithCacheInfo and discards the cache hit info.
func (r *Runner) BuildRows(ctx context.Context, tasks []task.Task, g gantt.RowGroup, opts Options) (*gantt.Model, error) {
	m, _, err := r.BuildRowsWithCacheInfo(ctx, tasks, g, opts)
	return m, err
}

// BuildReport builds every row group of rep, at most opts.Concurrency at a
// time, with positions for the report's timeline. The first failing group
// cancels the rest and its error is returned.
func (r *Runner) BuildReport(ctx context.Context, rep *report.Report, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := rep.Validate(opts.Registry); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	window, err := rep.Timeline.Window()
	if err != nil {
		return nil, err
	}
	opts.Window = &window

	reportHash, err := reportHash(rep)
	if err != nil {
		return nil, err
	}
	cacheKey := r.Keyer.ReportKey(reportHash, opts.RowsKeyOpts())
	kind := cache.KeyKind(cacheKey)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, kind)
				cached.CacheHit = true
				return &cached, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	hooks := observability.Pipeline()
	hooks.OnReportStart(ctx, len(rep.Structure))
	start := time.Now()

	groups := make([]GroupResult, len(rep.Structure))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for i, g := range rep.Structure {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			m, hit, err := r.BuildRowsWithCacheInfo(egCtx, rep.Tasks, g, opts)
			if err != nil {
				return fmt.Errorf("row group %q: %w", g.ID, err)
			}
			groups[i] = GroupResult{ID: g.ID, Name: g.Name, Model: m, CacheHit: hit}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		hooks.OnReportComplete(ctx, len(rep.Structure), time.Since(start), err)
		return nil, err
	}

	result := &Result{
		Window:  window,
		Columns: window.Columns(rep.Timeline.Scale()),
		Groups:  groups,
		Stats:   Stats{TaskCount: len(rep.Tasks)},
	}
	for _, g := range groups {
		result.Stats.RowCount += len(g.Model.Rows)
		result.Stats.OrphanCount += len(g.Model.Orphans)
	}
	result.Stats.BuildTime = time.Since(start)
	hooks.OnReportComplete(ctx, len(rep.Structure), result.Stats.BuildTime, nil)

	opts.Logger.Info("built report",
		"groups", len(groups),
		"rows", result.Stats.RowCount,
		"orphans", result.Stats.OrphanCount,
		"duration", result.Stats.BuildTime)

	if data, err := json.Marshal(result); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLReport); err == nil {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
	}
	return result, nil
}

// reportHash hashes the parts of a report that affect its rows. Summary,
// appearance and export date are left out.
func reportHash(rep *report.Report) (string, error) {
	sum, err := cache.HashJSON(struct {
		Timeline  report.Timeline  `json:"timeline"`
		Structure []gantt.RowGroup `json:"structure"`
		Tasks     []task.Task      `json:"tasks"`
	}{rep.Timeline, rep.Structure, rep.Tasks})
	if err != nil {
		return "", fmt.Errorf("hash report: %w", err)
	}
	return sum, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
