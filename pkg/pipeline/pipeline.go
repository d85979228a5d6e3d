// Package pipeline builds Gantt rows with caching for the CLI and the API.
//
// The row computation itself lives in pkg/gantt and is a pure function.
// This package wraps it with the concerns every entry point shares, so the
// CLI and the HTTP server behave identically:
//
//  1. Validate: options and row groups are checked before any work
//  2. Build: row groups are built from the tasks, concurrently per report
//  3. Place: tasks get timeline positions for the report's window
//
// Results are memoized in a [cache.Cache] under a hash of the inputs, so a
// cache hit returns exactly what a fresh build would.
//
// # Usage
//
// Build one row group:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	model, err := runner.BuildRows(ctx, tasks, group, pipeline.Options{})
//
// Build every row group of a report:
//
//	result, err := runner.BuildReport(ctx, rep, pipeline.Options{Concurrency: 4})
//	for _, g := range result.Groups {
//	    fmt.Println(g.ID, len(g.Model.Rows))
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultLaneHeight is the pixel height of one lane.
	DefaultLaneHeight = gantt.DefaultLaneHeight

	// DefaultVerticalPadding is the pixel padding added to every row.
	DefaultVerticalPadding = gantt.DefaultVerticalPadding

	// DefaultMaxCombinations caps the rows of one row group.
	DefaultMaxCombinations = gantt.DefaultMaxCombinations

	// DefaultConcurrency is how many row groups of a report build at once.
	DefaultConcurrency = 4

	// MaxConcurrency bounds Options.Concurrency.
	MaxConcurrency = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for building rows.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Row sizing
	LaneHeight      int `json:"lane_height,omitempty" validate:"gte=0,lte=1000"`
	VerticalPadding int `json:"vertical_padding,omitempty" validate:"gte=-1,lte=1000"` // -1 for no padding

	// MaxCombinations caps the rows of one group; -1 disables the cap.
	MaxCombinations int `json:"max_combinations,omitempty" validate:"gte=-1"`

	// Concurrency bounds the row groups built at once by BuildReport.
	Concurrency int `json:"concurrency,omitempty" validate:"gte=0,lte=64"`

	// Window, when set, attaches timeline positions to every task.
	Window *gantt.Window `json:"window,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Registry *task.Registry `json:"-"`
	Logger   *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a report build.
type Result struct {
	// Window is the report's timeline window.
	Window gantt.Window `json:"window"`

	// Columns are the timeline header cells at the report's scale.
	Columns []gantt.Column `json:"columns"`

	// Groups holds one entry per row group, in report order.
	Groups []GroupResult `json:"groups"`

	// Stats contains counts and timing.
	Stats Stats `json:"stats"`

	// CacheHit is true when the whole result came from the cache.
	CacheHit bool `json:"cacheHit"`
}

// GroupResult is the built model of one row group.
type GroupResult struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Model    *gantt.Model `json:"model"`
	CacheHit bool         `json:"cacheHit"`
}

// Stats contains report build statistics.
type Stats struct {
	TaskCount   int           `json:"taskCount"`
	RowCount    int           `json:"rowCount"`
	OrphanCount int           `json:"orphanCount"`
	BuildTime   time.Duration `json:"buildTime"`
}

// =============================================================================
// Validation Functions
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConcurrency checks that n is a usable worker count.
func ValidateConcurrency(n int) error {
	if n < 1 || n > MaxConcurrency {
		return errors.New(errors.ErrCodeInvalidConfiguration, "invalid concurrency: %d (must be 1..%d)", n, MaxConcurrency)
	}
	return nil
}

// ValidateGroup checks a row group's shape and depths. reg may be nil.
func ValidateGroup(g gantt.RowGroup, reg *task.Registry) error {
	if err := validate.Struct(g); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "row group %q", g.ID)
	}
	if err := gantt.ValidateDepths(g.Depths, reg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "row group %q", g.ID)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "invalid options")
	}
	if o.Window != nil {
		if err := o.Window.Validate(); err != nil {
			return err
		}
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.LaneHeight == 0 {
		o.LaneHeight = DefaultLaneHeight
	}
	if o.VerticalPadding == 0 {
		o.VerticalPadding = DefaultVerticalPadding
	}
	if o.MaxCombinations == 0 {
		o.MaxCombinations = DefaultMaxCombinations
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// GanttOptions returns the options passed to gantt.Build.
func (o *Options) GanttOptions() gantt.Options {
	return gantt.Options{
		LaneHeight:      o.LaneHeight,
		VerticalPadding: o.VerticalPadding,
		MaxCombinations: o.MaxCombinations,
		Registry:        o.Registry,
	}
}

// RowsKeyOpts returns cache key options for row building.
func (o *Options) RowsKeyOpts() cache.RowsKeyOpts {
	k := cache.RowsKeyOpts{
		LaneHeight:      o.LaneHeight,
		VerticalPadding: o.VerticalPadding,
		MaxCombinations: o.MaxCombinations,
	}
	if o.Window != nil {
		k.Window = o.Window.String()
	}
	return k
}
