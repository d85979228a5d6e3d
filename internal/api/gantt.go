package api

import (
	"net/http"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/report"
)

// rowsRequest is the body of POST /api/gantt/rows.
type rowsRequest struct {
	Depths   []gantt.Depth    `json:"depths" validate:"required,min=1,max=8,dive"`
	Filters  gantt.Filters    `json:"filters,omitempty"`
	Timeline *report.Timeline `json:"timeline,omitempty"`

	LaneHeight      int  `json:"laneHeight" validate:"gte=0,lte=1000"`
	VerticalPadding int  `json:"verticalPadding" validate:"gte=-1,lte=1000"`
	Refresh         bool `json:"refresh"`
}

// rowsResponse is the data of a rows build.
type rowsResponse struct {
	Depths       []gantt.Depth  `json:"depths"`
	Rows         []gantt.Row    `json:"rows"`
	Orphans      []string       `json:"orphans"`
	Combinations int            `json:"combinations"`
	Height       int            `json:"height"`
	Columns      []gantt.Column `json:"columns,omitempty"`
	CacheHit     bool           `json:"cacheHit"`
}

// handleBuildRows groups the stored tasks by the requested depths.
func (s *Server) handleBuildRows(w http.ResponseWriter, r *http.Request) {
	var req rowsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.opts
	if req.LaneHeight != 0 {
		opts.LaneHeight = req.LaneHeight
	}
	if req.VerticalPadding != 0 {
		opts.VerticalPadding = req.VerticalPadding
	}
	opts.Refresh = req.Refresh

	var columns []gantt.Column
	if req.Timeline != nil {
		win, err := req.Timeline.Window()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Window = &win
		columns = win.Columns(req.Timeline.Scale())
	}

	ctx := r.Context()
	tasks, err := s.store.List(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	group := gantt.RowGroup{ID: "request", Depths: req.Depths, Filters: req.Filters}
	m, hit, err := s.runner.BuildRowsWithCacheInfo(ctx, tasks, group, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": rowsResponse{
			Depths:       m.Depths,
			Rows:         m.Rows,
			Orphans:      m.Orphans,
			Combinations: len(m.Rows),
			Height:       m.Height(),
			Columns:      columns,
			CacheHit:     hit,
		},
	})
}

// handleBuildReport builds every row group of the posted report. With
// ?tasks=store the report's tasks are replaced by the stored ones.
func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	rep, err := report.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	switch src := r.URL.Query().Get("tasks"); src {
	case "", "report":
	case "store":
		if rep.Tasks, err = s.store.List(ctx); err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "tasks must be report or store, got %q", src))
		return
	}

	opts := s.opts
	opts.Refresh = r.URL.Query().Get("refresh") == "true"
	result, err := s.runner.BuildReport(ctx, rep, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": result})
}
