package gantt_test

import (
	"fmt"

	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

func newTask(id, start, end, typ, density string) task.Task {
	return task.New(id, task.MustParseDate(start), task.MustParseDate(end)).
		With("productType", task.String(typ)).
		With("density", task.String(density))
}

func ExampleBuild() {
	tasks := []task.Task{
		newTask("1", "2022-01-01", "2022-03-01", "DRAM", "8Gb"),
		newTask("2", "2022-02-01", "2022-04-01", "DRAM", "8Gb"),
		newTask("3", "2022-05-01", "2022-06-01", "DRAM", "16Gb"),
		newTask("4", "2022-01-01", "2022-02-01", "NAND", "8Gb"),
	}
	depths := []gantt.Depth{{Attribute: "productType"}, {Attribute: "density"}}

	m, err := gantt.Build(tasks, depths, gantt.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, row := range m.Rows {
		fmt.Printf("%-12s spans=%v tasks=%d lanes=%d height=%d\n",
			row.ColumnValues, row.RowSpans, len(row.Tasks), row.Lanes, row.Height)
	}
	// Output:
	// DRAM / 16Gb  spans=[2 1] tasks=1 lanes=1 height=92
	// DRAM / 8Gb   spans=[0 1] tasks=2 lanes=2 height=152
	// NAND / 16Gb  spans=[2 1] tasks=0 lanes=0 height=92
	// NAND / 8Gb   spans=[0 1] tasks=1 lanes=1 height=92
}

func ExampleWindow_Position() {
	w, _ := gantt.NewWindow(2022, 2022)
	t := task.New("x", task.MustParseDate("2022-07-02"), task.MustParseDate("2022-07-12"))

	p := w.Position(t)
	fmt.Printf("left=%.2f%% width=%.2f%%\n", p.Left, p.Width)
	// Output:
	// left=49.86% width=2.74%
}

func ExampleRowSpans() {
	combos := []gantt.Combination{
		{task.String("A"), task.String("S")},
		{task.String("A"), task.String("L")},
		{task.String("B"), task.String("S")},
	}
	fmt.Println(gantt.RowSpans(combos))
	// Output:
	// [[2 1] [0 1] [1 1]]
}
