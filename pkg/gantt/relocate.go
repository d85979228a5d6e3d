package gantt

import (
	"math"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// DragMode selects how a drag changes a task's dates.
type DragMode string

const (
	// DragMove shifts both dates and keeps the duration.
	DragMove DragMode = "move"
	// DragResizeLeft moves only the start date.
	DragResizeLeft DragMode = "resize-left"
	// DragResizeRight moves only the end date.
	DragResizeRight DragMode = "resize-right"
)

// ParseDragMode validates a drag mode name.
func ParseDragMode(s string) (DragMode, error) {
	switch m := DragMode(s); m {
	case DragMove, DragResizeLeft, DragResizeRight:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown drag mode %q (want move, resize-left or resize-right)", s)
}

// DaysForPercent converts a horizontal drag distance, in percent of the
// window width, to whole days.
func (w Window) DaysForPercent(pct float64) int {
	return int(math.Round(pct / 100 * float64(w.TotalDays())))
}

// Relocate applies a drag of pct percent of the window width to t and
// returns the updated copy. Resizes that would leave the start on or after
// the end are rejected with ErrCodeInvalidInput.
func Relocate(t task.Task, mode DragMode, pct float64, w Window) (task.Task, error) {
	if err := w.Validate(); err != nil {
		return task.Task{}, err
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return task.Task{}, errors.New(errors.ErrCodeInvalidInput, "drag distance must be finite")
	}
	days := w.DaysForPercent(pct)

	out := t.Clone()
	switch mode {
	case DragMove:
		out.Start = t.Start.AddDays(days)
		out.End = t.End.AddDays(days)
	case DragResizeLeft:
		out.Start = t.Start.AddDays(days)
		if !out.Start.Before(out.End) {
			return task.Task{}, errors.New(errors.ErrCodeInvalidInput, "task %q: start %s would not precede end %s", t.ID, out.Start, out.End)
		}
	case DragResizeRight:
		out.End = t.End.AddDays(days)
		if !out.Start.Before(out.End) {
			return task.Task{}, errors.New(errors.ErrCodeInvalidInput, "task %q: end %s would not follow start %s", t.ID, out.End, out.Start)
		}
	default:
		return task.Task{}, errors.New(errors.ErrCodeInvalidInput, "unknown drag mode %q", mode)
	}
	return out, nil
}
