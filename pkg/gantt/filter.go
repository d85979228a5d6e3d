package gantt

import (
	"sort"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// Filters restricts the values of a row group per attribute. An attribute
// without an entry allows every value; an entry allows only the listed
// values, so an empty list hides every task carrying that attribute.
// Tasks without a value for a filtered attribute pass unchanged; they end up
// orphaned only if the attribute is also a depth.
type Filters map[string][]task.Value

// Allows reports whether t passes every filter.
func (f Filters) Allows(t task.Task) bool {
	for attr, allowed := range f {
		v := t.Attr(attr)
		if v.IsNull() {
			continue
		}
		if !contains(allowed, v) {
			return false
		}
	}
	return true
}

// Apply returns the tasks passing f, in input order. A nil or empty f
// returns tasks unchanged.
func (f Filters) Apply(tasks []task.Task) []task.Task {
	if len(f) == 0 {
		return tasks
	}
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Allows(t) {
			out = append(out, t)
		}
	}
	return out
}

// Toggle returns a copy of f with v switched for attr. When attr has no
// entry yet, every value in universe except v stays allowed. A filter that
// ends up allowing all of universe is removed.
func (f Filters) Toggle(attr string, v task.Value, universe []task.Value) Filters {
	out := make(Filters, len(f)+1)
	for k, vs := range f {
		out[k] = append([]task.Value(nil), vs...)
	}

	current, ok := out[attr]
	if !ok {
		current = append([]task.Value(nil), universe...)
	}
	if contains(current, v) {
		next := current[:0]
		for _, c := range current {
			if !c.Equal(v) {
				next = append(next, c)
			}
		}
		current = next
	} else {
		current = append(current, v)
	}
	sort.Slice(current, func(i, j int) bool { return current[i].Compare(current[j]) < 0 })

	if len(current) >= len(universe) && allIn(universe, current) {
		delete(out, attr)
	} else {
		out[attr] = current
	}
	return out
}

func contains(vals []task.Value, v task.Value) bool {
	for _, x := range vals {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

func allIn(want, have []task.Value) bool {
	for _, w := range want {
		if !contains(have, w) {
			return false
		}
	}
	return true
}
