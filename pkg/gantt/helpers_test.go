package gantt

import (
	"fmt"
	"math/rand/v2"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// mk builds a task from alternating attribute name/value pairs.
func mk(id, start, end string, kv ...any) task.Task {
	t := task.New(id, task.MustParseDate(start), task.MustParseDate(end))
	for i := 0; i+1 < len(kv); i += 2 {
		t.Attributes[kv[i].(string)] = task.MustValueOf(kv[i+1])
	}
	return t
}

func depthsOf(attrs ...string) []Depth {
	out := make([]Depth, len(attrs))
	for i, a := range attrs {
		out[i] = Depth{Attribute: a}
	}
	return out
}

func strs(vals ...string) []task.Value {
	out := make([]task.Value, len(vals))
	for i, v := range vals {
		out[i] = task.String(v)
	}
	return out
}

// randomTasks generates n tasks with attributes a, b and c drawn from small
// value pools; roughly one in ten tasks lacks attribute c.
func randomTasks(r *rand.Rand, n int) []task.Task {
	base := task.NewDate(2022, 1, 1)
	tasks := make([]task.Task, n)
	for i := range tasks {
		start := base.AddDays(r.IntN(700))
		t := task.New(fmt.Sprintf("t%03d", i), start, start.AddDays(r.IntN(90)))
		t.Attributes["a"] = task.String([]string{"x", "y", "z"}[r.IntN(3)])
		t.Attributes["b"] = task.Number(float64(r.IntN(4)))
		if r.IntN(10) > 0 {
			t.Attributes["c"] = task.Bool(r.IntN(2) == 0)
		}
		tasks[i] = t
	}
	return tasks
}
