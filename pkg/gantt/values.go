package gantt

import (
	"sort"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// MaxDepths is the deepest row hierarchy a group may define.
const MaxDepths = 8

// Depth is one level of the row hierarchy.
type Depth struct {
	Attribute string `json:"attribute" yaml:"attribute" toml:"attribute" validate:"required,max=64"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// Attributes returns the attribute names of depths in order.
func Attributes(depths []Depth) []string {
	out := make([]string, len(depths))
	for i, d := range depths {
		out[i] = d.Attribute
	}
	return out
}

// DistinctValues returns the distinct non-null values of depth's attribute
// across all tasks, sorted with [task.Value.Compare].
func DistinctValues(tasks []task.Task, depth Depth) []task.Value {
	seen := make(map[task.Value]struct{})
	var out []task.Value
	for _, t := range tasks {
		v := t.Attr(depth.Attribute)
		if v.IsNull() {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// ValueSets returns DistinctValues for every depth. Each set is computed over
// all tasks independently of the other depths, so a combination may end up
// with no tasks.
func ValueSets(tasks []task.Task, depths []Depth) [][]task.Value {
	if len(tasks) == 0 || len(depths) == 0 {
		return nil
	}
	sets := make([][]task.Value, len(depths))
	for i, d := range depths {
		sets[i] = DistinctValues(tasks, d)
	}
	return sets
}
