// Package pkg provides the core libraries for flexgantt.
//
// # Overview
//
// flexgantt turns a flat list of product development tasks into a grouped
// Gantt chart. The user picks an ordered list of attributes (product type,
// density, process, ...); every combination of their distinct values becomes
// a row, and adjacent rows sharing a value prefix merge their label cells.
// Overlapping tasks in a row are stacked into lanes, and every task is placed
// on a multi-year timeline.
//
// # Architecture
//
// The typical data flow:
//
//	Report file / task store
//	         ↓
//	    [task] package (tasks, typed attribute values, registry)
//	         ↓
//	    [gantt] package (value index, rows + rowspans, matching, lanes, timeline)
//	         ↓
//	    [pipeline] package (validation, caching, concurrent report builds)
//	         ↓
//	    CLI tables / JSON / REST API
//
// # Quick Start
//
// Build the rows of one row group:
//
//	import (
//	    "github.com/flexgantt/flexgantt/pkg/gantt"
//	    "github.com/flexgantt/flexgantt/pkg/task"
//	)
//
//	tasks := []task.Task{
//	    task.New("1", task.MustParseDate("2022-01-01"), task.MustParseDate("2022-03-01")).
//	        With("productType", task.String("DRAM")).
//	        With("density", task.String("8Gb")),
//	}
//	depths := []gantt.Depth{{Attribute: "productType"}, {Attribute: "density"}}
//
//	m, err := gantt.Build(tasks, depths, gantt.Options{})
//	w, _ := gantt.NewWindow(2022, 2026)
//	err = m.Place(w)
//
// # Main Packages
//
// ## Domain
//
// [task] - Tasks with inclusive start and end dates and a bag of typed
// attribute values, plus the registry of known attributes.
//
// [gantt] - The row model: distinct value sets, the combination grid and its
// rowspans, task matching, greedy lane assignment, timeline positions and
// drag relocation.
//
// [report] - The chart document (timeline, row groups, appearance, tasks)
// with JSON, YAML and TOML encodings.
//
// ## Infrastructure
//
// [pipeline] - Cached row building shared by the CLI and the API.
//
// [cache] - Byte caches (file, Redis, null) and cache key derivation.
//
// [store] - Task persistence in memory, Postgres or MongoDB.
//
// [observability] - Hooks for build, cache and HTTP metrics with a
// Prometheus implementation.
//
// [errors] - Structured errors with codes for API responses.
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test ./pkg/gantt/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	DATABASE_URL=... go test ./pkg/store # Include the Postgres store
//
// [task]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/task
// [gantt]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/gantt
// [report]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/cache
// [store]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/store
// [observability]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/observability
// [errors]: https://pkg.go.dev/github.com/flexgantt/flexgantt/pkg/errors
package pkg
