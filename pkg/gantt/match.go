package gantt

import "github.com/flexgantt/flexgantt/pkg/task"

// Matches reports whether t holds combo's value at every depth. A task
// missing a grouping value never matches.
func Matches(t task.Task, depths []Depth, combo Combination) bool {
	if len(depths) != len(combo) {
		return false
	}
	for i, d := range depths {
		v := t.Attr(d.Attribute)
		if v.IsNull() || !v.Equal(combo[i]) {
			return false
		}
	}
	return true
}

// Match returns the tasks belonging to combo, in input order.
func Match(tasks []task.Task, depths []Depth, combo Combination) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if Matches(t, depths, combo) {
			out = append(out, t)
		}
	}
	return out
}

type comboKey [MaxDepths]task.Value

// Partition distributes tasks over combos in one pass. buckets[i] holds the
// tasks matching combos[i] in input order; orphans holds the tasks matching
// no combination, typically because a grouping value is missing.
func Partition(tasks []task.Task, depths []Depth, combos []Combination) (buckets [][]task.Task, orphans []task.Task) {
	buckets = make([][]task.Task, len(combos))
	if len(depths) > MaxDepths {
		matched := make([]bool, len(tasks))
		for i, c := range combos {
			for j, t := range tasks {
				if Matches(t, depths, c) {
					buckets[i] = append(buckets[i], t)
					matched[j] = true
				}
			}
		}
		for j, t := range tasks {
			if !matched[j] {
				orphans = append(orphans, t)
			}
		}
		return buckets, orphans
	}

	index := make(map[comboKey][]int, len(combos))
	for i, c := range combos {
		if len(c) != len(depths) {
			continue
		}
		var k comboKey
		copy(k[:], c)
		index[k] = append(index[k], i)
	}

	for _, t := range tasks {
		var k comboKey
		complete := true
		for d, depth := range depths {
			k[d] = t.Attr(depth.Attribute)
			complete = complete && !k[d].IsNull()
		}
		targets := index[k]
		if !complete || len(depths) == 0 || len(targets) == 0 {
			orphans = append(orphans, t)
			continue
		}
		for _, i := range targets {
			buckets[i] = append(buckets[i], t)
		}
	}
	return buckets, orphans
}
