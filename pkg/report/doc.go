// Package report reads and writes Gantt report documents.
//
// # Overview
//
// A report is everything needed to redraw a chart: the timeline window, the
// row groups, how tasks are drawn and the tasks themselves. It is the
// document exported from and imported into the application, so a chart can
// be shared as a single file and rebuilt identically.
//
// # Document Format
//
// The JSON form is the canonical one:
//
//	{
//	  "version": "1.0",
//	  "exportDate": "2024-05-01T09:30:00Z",
//	  "summary": "Q3 roadmap",
//	  "timeline": {"startYear": 2022, "endYear": 2026, "showQuarters": true,
//	               "showMonths": false, "dateFormat": "YYYY-MM-DD"},
//	  "structure": [
//	    {"id": "row-1", "name": "By product",
//	     "depths": [{"attribute": "productType"}, {"attribute": "density"}]}
//	  ],
//	  "attributes": {"shape": "gantt", "color": "#93C5FD",
//	                 "ganttAttributes": ["productType", "density"]},
//	  "taskShapes": {"17": "circle"},
//	  "tasks": [{"id": "17", "startDate": "2022-01-01", "endDate": "2022-03-01",
//	             "productType": "DRAM"}]
//	}
//
// Tasks use the flat form of [task.Task]. Row group filters map an attribute
// to its allowed values.
//
// # Import and Export
//
// [Import] and [Export] pick the encoding from the file extension: .json,
// .yaml/.yml or .toml. [ReadJSON] and [WriteJSON] work on any reader or
// writer; [Read] and [Write] take an explicit [Format].
//
//	r, err := report.Import("roadmap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = report.Export(r, "roadmap.json")
//
// Decoded reports are checked with [Report.Validate] before they are
// returned, so callers can build rows from them directly.
package report
