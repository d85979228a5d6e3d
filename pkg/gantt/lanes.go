package gantt

import (
	"sort"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// LanedTask is a task placed in a lane of its row.
type LanedTask struct {
	Task       task.Task `json:"task"`
	Lane       int       `json:"lane"`
	TotalLanes int       `json:"totalLanes"`
	Position   *Position `json:"position,omitempty"`
}

// AssignLanes packs tasks into the fewest lanes such that tasks sharing a
// lane never overlap. Tasks are placed in start order (ties keep input
// order), each into the lowest lane holding no task that overlaps it. Every
// result carries the total lane count, which is also returned. The sweep
// uses exactly as many lanes as the largest set of mutually overlapping tasks.
func AssignLanes(tasks []task.Task) ([]LanedTask, int) {
	if len(tasks) == 0 {
		return nil, 0
	}

	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return tasks[order[a]].Start.Before(tasks[order[b]].Start)
	})

	out := make([]LanedTask, 0, len(tasks))
	var lanes [][]task.Task
	for _, i := range order {
		t := tasks[i]
		lane := -1
		for l, placed := range lanes {
			if fits(placed, t) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(lanes)
			lanes = append(lanes, nil)
		}
		lanes[lane] = append(lanes[lane], t)
		out = append(out, LanedTask{Task: t, Lane: lane})
	}

	total := len(lanes)
	for i := range out {
		out[i].TotalLanes = total
	}
	return out, total
}

// fits reports whether t overlaps none of placed. Zero-length tasks may sit
// inside another task's interval, so every task in the lane is checked.
func fits(placed []task.Task, t task.Task) bool {
	for _, p := range placed {
		if p.Overlaps(t) {
			return false
		}
	}
	return true
}
