// Package gantt turns a flat list of tasks into the rows of a grouped Gantt
// chart.
//
// # Overview
//
// A report groups tasks by a hierarchy of attributes called depths, for
// example product type then density. Every combination of the distinct
// values of those attributes becomes one chart row; the leading columns of
// the chart show the combination and merge vertically (rowspan) wherever
// neighbouring rows share a value prefix:
//
//	| DRAM | 8Gb  | ====    ==      |
//	|      | 16Gb |    =======      |
//	| NAND | 8Gb  |  ==             |
//
// Inside a row, tasks whose date ranges overlap are stacked into lanes so no
// two bars collide, and the row grows to fit the deepest stack.
//
// # Pipeline
//
// The pieces compose leaf first:
//
//   - [DistinctValues] and [ValueSets] index the values present per depth
//   - [Combinations] takes the Cartesian product, last depth varying fastest
//   - [RowSpans] computes the merge plan for the leading columns
//   - [Match] and [Partition] select the tasks belonging to each combination
//   - [AssignLanes] packs a row's tasks into non-overlapping lanes
//   - [Window.Position] maps a task onto the horizontal timeline in percent
//
// [Build] runs all of them and returns a [Model]:
//
//	m, err := gantt.Build(tasks, []gantt.Depth{{Attribute: "productType"}, {Attribute: "density"}}, gantt.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, row := range m.Rows {
//	    fmt.Println(row.ColumnValues, row.RowSpans, len(row.Tasks))
//	}
//
// # Values
//
// Attribute values compare strictly: a number never equals a string with the
// same digits. Tasks missing a value for any depth belong to no row; [Build]
// reports them in [Model.Orphans].
//
// # Concurrency
//
// Every function in this package is pure and allocates fresh results, so it
// is safe to call from multiple goroutines.
package gantt
