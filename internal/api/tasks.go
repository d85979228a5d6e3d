package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// relocateRequest is the body of POST /api/tasks/{id}/relocate.
type relocateRequest struct {
	Mode         string           `json:"mode" validate:"required,oneof=move resize-left resize-right"`
	DeltaPercent float64          `json:"deltaPercent" validate:"gte=-100,lte=100"`
	Timeline     *report.Timeline `json:"timeline,omitempty"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(tasks),
		"data":    tasks,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": t})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTask(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.Create(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("task created", "id", created.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTask(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t.ID = chi.URLParam(r, "id")
	updated, err := s.store.Update(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("task deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task deleted successfully",
		"id":      id,
	})
}

func (s *Server) handleRelocateTask(w http.ResponseWriter, r *http.Request) {
	var req relocateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := gantt.ParseDragMode(req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tl := report.Default().Timeline
	if req.Timeline != nil {
		tl = *req.Timeline
	}
	win, err := tl.Window()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	t, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	moved, err := gantt.Relocate(t, mode, req.DeltaPercent, win)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.store.Update(ctx, moved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("task relocated", "id", updated.ID, "mode", mode,
		"start", updated.Start, "end", updated.End)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

// readTask decodes a task body and coerces its attributes to their
// registered kinds.
func (s *Server) readTask(w http.ResponseWriter, r *http.Request) (task.Task, error) {
	var t task.Task
	if err := decodeJSON(w, r, &t); err != nil {
		return task.Task{}, err
	}
	if unknown := s.registry.Unknown(t.Attributes); len(unknown) > 0 {
		return task.Task{}, errors.New(errors.ErrCodeInvalidTask, "unknown attributes: %s", strings.Join(unknown, ", "))
	}
	for name, v := range t.Attributes {
		cv, err := s.registry.Coerce(name, v)
		if err != nil {
			return task.Task{}, errors.Wrap(errors.ErrCodeInvalidTask, err, "invalid task")
		}
		t.Attributes[name] = cv
	}
	return t, nil
}
