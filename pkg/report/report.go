package report

import (
	"fmt"
	"regexp"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// Version is the document version written by this package.
const Version = "1.0"

// Shape is how a task is drawn.
type Shape string

// Task shapes.
const (
	ShapeGantt     Shape = "gantt"
	ShapeCircle    Shape = "circle"
	ShapeRectangle Shape = "rectangle"
	ShapeTriangle  Shape = "triangle"
)

// MaxShapeAttributes bounds the labels drawn next to non-bar shapes.
const MaxShapeAttributes = 4

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeGantt, ShapeCircle, ShapeRectangle, ShapeTriangle:
		return true
	}
	return false
}

// Report is a complete chart document.
type Report struct {
	Version    string           `json:"version" yaml:"version"`
	ExportDate time.Time        `json:"exportDate" yaml:"exportDate"`
	Summary    string           `json:"summary" yaml:"summary"`
	Timeline   Timeline         `json:"timeline" yaml:"timeline"`
	Structure  []gantt.RowGroup `json:"structure" yaml:"structure"`
	Attributes TaskConfig       `json:"attributes" yaml:"attributes"`
	TaskShapes map[string]Shape `json:"taskShapes,omitempty" yaml:"taskShapes,omitempty"`
	Tasks      []task.Task      `json:"tasks" yaml:"tasks"`
}

// Timeline configures the visible window and its header columns.
type Timeline struct {
	StartYear    int    `json:"startYear" yaml:"startYear" toml:"startYear"`
	EndYear      int    `json:"endYear" yaml:"endYear" toml:"endYear"`
	ShowQuarters bool   `json:"showQuarters" yaml:"showQuarters" toml:"showQuarters"`
	ShowMonths   bool   `json:"showMonths" yaml:"showMonths" toml:"showMonths"`
	DateFormat   string `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty" toml:"dateFormat,omitempty"`
}

// Window returns the timeline window.
func (t Timeline) Window() (gantt.Window, error) {
	return gantt.NewWindow(t.StartYear, t.EndYear)
}

// Scale returns the finest header scale the timeline shows.
func (t Timeline) Scale() gantt.Scale {
	switch {
	case t.ShowMonths:
		return gantt.ScaleMonth
	case t.ShowQuarters:
		return gantt.ScaleQuarter
	default:
		return gantt.ScaleYear
	}
}

// Format renders d with the timeline's date format.
func (t Timeline) Format(d task.Date) string {
	return task.FormatDate(d, t.DateFormat)
}

// LabelPosition places an attribute label inside a bar, in percent.
type LabelPosition struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// TaskConfig holds the default task appearance.
type TaskConfig struct {
	Shape               Shape                    `json:"shape" yaml:"shape" toml:"shape"`
	Color               string                   `json:"color" yaml:"color" toml:"color"`
	GanttAttributes     []string                 `json:"ganttAttributes" yaml:"ganttAttributes" toml:"ganttAttributes"`
	GanttLabelPositions map[string]LabelPosition `json:"ganttLabelPositions,omitempty" yaml:"ganttLabelPositions,omitempty" toml:"ganttLabelPositions,omitempty"`
	ShapeAttributes     []string                 `json:"shapeAttributes" yaml:"shapeAttributes" toml:"shapeAttributes"`
}

// Default returns the report a new chart starts from: 2022 through 2026 with
// quarters shown and one row group by product type and density.
func Default() *Report {
	return &Report{
		Version: Version,
		Timeline: Timeline{
			StartYear:    2022,
			EndYear:      2026,
			ShowQuarters: true,
			DateFormat:   task.DefaultLayout,
		},
		Structure: []gantt.RowGroup{{
			ID:   "row-1",
			Name: "By product",
			Depths: []gantt.Depth{
				{Attribute: "productType", Label: "Product Type"},
				{Attribute: "density", Label: "Density"},
			},
		}},
		Attributes: TaskConfig{
			Shape:           ShapeGantt,
			Color:           "#93C5FD",
			GanttAttributes: []string{"productType", "density", "process"},
			GanttLabelPositions: map[string]LabelPosition{
				"productType": {X: 50, Y: 35},
				"density":     {X: 50, Y: 50},
				"process":     {X: 50, Y: 65},
			},
			ShapeAttributes: []string{"productType", "density"},
		},
		TaskShapes: map[string]Shape{},
		Tasks:      []task.Task{},
	}
}

// Group returns the row group with the given id.
func (r *Report) Group(id string) (gantt.RowGroup, bool) {
	for _, g := range r.Structure {
		if g.ID == id {
			return g, true
		}
	}
	return gantt.RowGroup{}, false
}

// ShapeOf returns the shape of a task: its override, else the default.
func (r *Report) ShapeOf(taskID string) Shape {
	if s, ok := r.TaskShapes[taskID]; ok {
		return s
	}
	if r.Attributes.Shape == "" {
		return ShapeGantt
	}
	return r.Attributes.Shape
}

var colorRegex = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Validate checks the document. When reg is non-nil, depth and label
// attributes must be registered. Tasks are checked the same way a build
// checks them.
func (r *Report) Validate(reg *task.Registry) error {
	if r.Version != "" && r.Version != Version {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported report version %q", r.Version)
	}
	if _, err := r.Timeline.Window(); err != nil {
		return err
	}
	if r.Timeline.DateFormat != "" && !task.ValidLayout(r.Timeline.DateFormat) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "unknown date format %q", r.Timeline.DateFormat)
	}

	ids := make(map[string]bool, len(r.Structure))
	for i, g := range r.Structure {
		if g.ID == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "row group %d has no id", i)
		}
		if ids[g.ID] {
			return errors.New(errors.ErrCodeInvalidConfiguration, "duplicate row group id %q", g.ID)
		}
		ids[g.ID] = true
		if err := gantt.ValidateDepths(g.Depths, reg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "row group %q", g.ID)
		}
	}

	if err := r.Attributes.validate(reg); err != nil {
		return err
	}
	for id, s := range r.TaskShapes {
		if !s.Valid() {
			return errors.New(errors.ErrCodeInvalidConfiguration, "task %q: unknown shape %q", id, s)
		}
	}
	return gantt.ValidateTasks(r.Tasks)
}

func (c TaskConfig) validate(reg *task.Registry) error {
	if c.Shape != "" && !c.Shape.Valid() {
		return errors.New(errors.ErrCodeInvalidConfiguration, "unknown shape %q", c.Shape)
	}
	if c.Color != "" && !colorRegex.MatchString(c.Color) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "invalid color %q", c.Color)
	}
	if len(c.ShapeAttributes) > MaxShapeAttributes {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"%d shape attributes (max %d)", len(c.ShapeAttributes), MaxShapeAttributes)
	}
	if reg == nil {
		return nil
	}
	for _, list := range [][]string{c.GanttAttributes, c.ShapeAttributes} {
		for _, a := range list {
			if !reg.Has(a) {
				return errors.New(errors.ErrCodeInvalidConfiguration, "unknown label attribute %q", a)
			}
		}
	}
	return nil
}

// String summarizes the report for logs.
func (r *Report) String() string {
	return fmt.Sprintf("report v%s %d-%d groups=%d tasks=%d",
		r.Version, r.Timeline.StartYear, r.Timeline.EndYear, len(r.Structure), len(r.Tasks))
}
