package gantt

import (
	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

const (
	// DefaultLaneHeight is the pixel height of one lane.
	DefaultLaneHeight = 60

	// DefaultVerticalPadding is the pixel padding added to every row.
	DefaultVerticalPadding = 32

	// DefaultMaxCombinations caps the number of rows a single group may
	// produce.
	DefaultMaxCombinations = 10000
)

// Options tunes Build. The zero value uses the defaults.
type Options struct {
	// LaneHeight and VerticalPadding size the rows in pixels.
	LaneHeight      int `json:"laneHeight,omitempty"`
	VerticalPadding int `json:"verticalPadding,omitempty"`

	// MaxCombinations caps the row count. Zero means DefaultMaxCombinations,
	// a negative value disables the cap.
	MaxCombinations int `json:"maxCombinations,omitempty"`

	// Registry, when set, rejects depths naming unknown attributes.
	Registry *task.Registry `json:"-"`
}

func (o Options) withDefaults() Options {
	if o.LaneHeight <= 0 {
		o.LaneHeight = DefaultLaneHeight
	}
	if o.VerticalPadding < 0 {
		o.VerticalPadding = 0
	} else if o.VerticalPadding == 0 {
		o.VerticalPadding = DefaultVerticalPadding
	}
	if o.MaxCombinations == 0 {
		o.MaxCombinations = DefaultMaxCombinations
	}
	return o
}

// RowHeight returns the pixel height of a row holding lanes lanes. Empty
// rows are as tall as a single lane.
func (o Options) RowHeight(lanes int) int {
	o = o.withDefaults()
	return max(lanes, 1)*o.LaneHeight + o.VerticalPadding
}

// RowGroup is a named row hierarchy with optional value filters.
type RowGroup struct {
	ID      string  `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name    string  `json:"name" yaml:"name" toml:"name"`
	Depths  []Depth `json:"depths" yaml:"depths" toml:"depths" validate:"required,min=1,max=8,dive"`
	Filters Filters `json:"filters,omitempty" yaml:"filters,omitempty" toml:"filters,omitempty"`
}

// Row is one chart row: a combination, its merge plan and its laned tasks.
type Row struct {
	ColumnValues Combination `json:"columnValues"`
	RowSpans     []int       `json:"rowspans"`
	Tasks        []LanedTask `json:"tasks"`
	Lanes        int         `json:"lanes"`
	Height       int         `json:"rowHeight"`
}

// Model is the derived view of a row group.
type Model struct {
	Depths []Depth `json:"depths"`
	Rows   []Row   `json:"rows"`

	// Orphans lists the ids of tasks that fell into no row.
	Orphans []string `json:"orphans"`
}

// Height returns the sum of all row heights.
func (m *Model) Height() int {
	h := 0
	for _, r := range m.Rows {
		h += r.Height
	}
	return h
}

// TaskCount returns the number of placed tasks.
func (m *Model) TaskCount() int {
	n := 0
	for _, r := range m.Rows {
		n += len(r.Tasks)
	}
	return n
}

// Find returns the row and laned task holding the task with the given id.
func (m *Model) Find(id string) (*Row, *LanedTask, bool) {
	for i := range m.Rows {
		for j := range m.Rows[i].Tasks {
			if m.Rows[i].Tasks[j].Task.ID == id {
				return &m.Rows[i], &m.Rows[i].Tasks[j], true
			}
		}
	}
	return nil, nil, false
}

// Place attaches the timeline position of every task for window w.
func (m *Model) Place(w Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	for i := range m.Rows {
		for j := range m.Rows[i].Tasks {
			p := w.Position(m.Rows[i].Tasks[j].Task)
			m.Rows[i].Tasks[j].Position = &p
		}
	}
	return nil
}

// ValidateDepths checks a row hierarchy: one to MaxDepths levels, well-formed
// and distinct attribute names, and, when reg is non-nil, registered ones.
func ValidateDepths(depths []Depth, reg *task.Registry) error {
	if len(depths) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "row group has no depths")
	}
	if len(depths) > MaxDepths {
		return errors.New(errors.ErrCodeInvalidConfiguration, "row group has %d depths (max %d)", len(depths), MaxDepths)
	}
	seen := make(map[string]bool, len(depths))
	for i, d := range depths {
		if err := errors.ValidateAttributeName(d.Attribute); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "depth %d", i)
		}
		if seen[d.Attribute] {
			return errors.New(errors.ErrCodeInvalidConfiguration, "depth %d: attribute %q used twice", i, d.Attribute)
		}
		seen[d.Attribute] = true
		if reg != nil {
			a, ok := reg.Lookup(d.Attribute)
			if !ok {
				return errors.New(errors.ErrCodeInvalidConfiguration, "depth %d: unknown attribute %q", i, d.Attribute)
			}
			if !a.Groupable {
				return errors.New(errors.ErrCodeInvalidConfiguration, "depth %d: attribute %q cannot group rows", i, d.Attribute)
			}
		}
	}
	return nil
}

// ValidateTasks checks every task and rejects duplicate ids.
func ValidateTasks(tasks []task.Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidTask, "duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Build groups tasks into rows for the given depths. Configuration and task
// errors are reported before any work is done. Tasks missing a grouping
// value are listed in Model.Orphans.
func Build(tasks []task.Task, depths []Depth, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	if err := ValidateDepths(depths, opts.Registry); err != nil {
		return nil, err
	}
	if err := ValidateTasks(tasks); err != nil {
		return nil, err
	}

	sets := ValueSets(tasks, depths)
	if n := CountCombinations(sets); opts.MaxCombinations > 0 && n > opts.MaxCombinations {
		return nil, errors.New(errors.ErrCodeTooManyCombinations,
			"row group produces %d rows (limit %d); add filters or fewer depths", n, opts.MaxCombinations)
	}

	combos := Combinations(sets)
	spans := RowSpans(combos)
	buckets, orphans := Partition(tasks, depths, combos)

	m := &Model{
		Depths:  append([]Depth(nil), depths...),
		Rows:    make([]Row, len(combos)),
		Orphans: make([]string, 0, len(orphans)),
	}
	for i, c := range combos {
		laned, lanes := AssignLanes(buckets[i])
		if laned == nil {
			laned = []LanedTask{}
		}
		m.Rows[i] = Row{
			ColumnValues: c,
			RowSpans:     spans[i],
			Tasks:        laned,
			Lanes:        lanes,
			Height:       opts.RowHeight(lanes),
		}
	}
	for _, t := range orphans {
		m.Orphans = append(m.Orphans, t.ID)
	}
	return m, nil
}

// BuildGroup applies g's filters to tasks and builds its rows.
func BuildGroup(tasks []task.Task, g RowGroup, opts Options) (*Model, error) {
	return Build(g.Filters.Apply(tasks), g.Depths, opts)
}
